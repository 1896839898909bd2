package user

import "time"

// User represents a user entity in the system.
type User struct {
	ID                 int64      // ID is the unique identifier for the user
	Email              string     // Email is the unique email address of the user
	Password           string     // Password is the stored credential (bcrypt hash)
	FullName           string     // FullName is the full name of the user
	UserType           Type       // UserType is the account category
	CompanyName        *string    // CompanyName is the optional company the user represents
	PhoneNumber        *string    // PhoneNumber is the optional contact number
	Address            *string    // Address is the optional postal address
	NationalID         *string    // NationalID is the optional national identifier
	RegistrationNumber *string    // RegistrationNumber is the optional company registration number
	BankAccountNumber  *string    // BankAccountNumber is the optional payout account
	BankName           *string    // BankName is the optional bank of the payout account
	ProfileImage       *string    // ProfileImage is the optional reference to the avatar
	IsActive           bool       // IsActive reports whether the account is enabled
	IsVerified         bool       // IsVerified reports whether the email has been confirmed
	EmailVerifiedAt    *time.Time // EmailVerifiedAt is when the email was confirmed
	LastLogin          *time.Time // LastLogin is the time of the most recent login
	CreatedAt          time.Time  // CreatedAt is set when the record is first written
	UpdatedAt          time.Time  // UpdatedAt is refreshed on every write
}

// Profile holds the optional, user-editable attributes of a User.
// A nil field means "leave unchanged" on update.
type Profile struct {
	CompanyName        *string
	PhoneNumber        *string
	Address            *string
	NationalID         *string
	RegistrationNumber *string
	BankAccountNumber  *string
	BankName           *string
	ProfileImage       *string
}

// Apply copies every non-nil field of p onto u.
func (p Profile) Apply(u *User) {
	if p.CompanyName != nil {
		u.CompanyName = p.CompanyName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = p.PhoneNumber
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.NationalID != nil {
		u.NationalID = p.NationalID
	}
	if p.RegistrationNumber != nil {
		u.RegistrationNumber = p.RegistrationNumber
	}
	if p.BankAccountNumber != nil {
		u.BankAccountNumber = p.BankAccountNumber
	}
	if p.BankName != nil {
		u.BankName = p.BankName
	}
	if p.ProfileImage != nil {
		u.ProfileImage = p.ProfileImage
	}
}

// ListFilter narrows a user listing.
type ListFilter struct {
	Query    string // Query matches full name or email (substring, case-insensitive)
	UserType Type   // UserType restricts results to one category when set
	IsActive *bool  // IsActive restricts results by the active flag when set
}
