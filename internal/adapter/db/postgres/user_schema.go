package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"
)

// Index names declared on the users table.
const (
	IndexUsersEmail    = "idx_users_email"
	IndexUsersUserType = "idx_users_user_type"
	IndexUsersIsActive = "idx_users_is_active"
)

// UserSchema represents the database schema for the users table.
// Column names are declared explicitly and used verbatim.
type UserSchema struct {
	ID                 int64      `gorm:"column:id;primaryKey;autoIncrement;not null"`
	Email              string     `gorm:"column:email;size:100;not null;uniqueIndex:idx_users_email"`
	Password           string     `gorm:"column:password;size:255;not null"`
	FullName           string     `gorm:"column:full_name;size:100;not null"`
	UserType           user.Type  `gorm:"column:user_type;size:20;not null;index:idx_users_user_type;check:chk_users_user_type,user_type IN ('founder','investor','admin')"`
	CompanyName        *string    `gorm:"column:company_name;size:100"`
	PhoneNumber        *string    `gorm:"column:phone_number;size:20"`
	Address            *string    `gorm:"column:address;size:255"`
	NationalID         *string    `gorm:"column:national_id;size:50"`
	RegistrationNumber *string    `gorm:"column:registration_number;size:50"`
	BankAccountNumber  *string    `gorm:"column:bank_account_number;size:50"`
	BankName           *string    `gorm:"column:bank_name;size:100"`
	ProfileImage       *string    `gorm:"column:profile_image;size:255"`
	IsActive           *bool      `gorm:"column:is_active;not null;default:true;index:idx_users_is_active"`
	IsVerified         *bool      `gorm:"column:is_verified;not null;default:false"`
	EmailVerifiedAt    *time.Time `gorm:"column:email_verified_at"`
	LastLogin          *time.Time `gorm:"column:last_login"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// EmailRule is the validator rule every stored email must satisfy.
const EmailRule = "required,email,max=100"

var validate = validator.New()

// Column is the declared constraint set of one users column.
type Column struct {
	Name     string
	DataType schema.DataType
	Nullable bool
	Size     int    // only meaningful for string columns
	Default  string // literal default, empty when none
	Rule     string // validator rule checked before writes, empty when none
}

// Columns returns the users table layout as declared on UserSchema.
func Columns() []Column {
	return []Column{
		{Name: "id", DataType: schema.Int},
		{Name: "email", DataType: schema.String, Size: 100, Rule: EmailRule},
		{Name: "password", DataType: schema.String, Size: 255},
		{Name: "full_name", DataType: schema.String, Size: 100},
		{Name: "user_type", DataType: schema.String, Size: 20},
		{Name: "company_name", DataType: schema.String, Nullable: true, Size: 100},
		{Name: "phone_number", DataType: schema.String, Nullable: true, Size: 20},
		{Name: "address", DataType: schema.String, Nullable: true, Size: 255},
		{Name: "national_id", DataType: schema.String, Nullable: true, Size: 50},
		{Name: "registration_number", DataType: schema.String, Nullable: true, Size: 50},
		{Name: "bank_account_number", DataType: schema.String, Nullable: true, Size: 50},
		{Name: "bank_name", DataType: schema.String, Nullable: true, Size: 100},
		{Name: "profile_image", DataType: schema.String, Nullable: true, Size: 255},
		{Name: "is_active", DataType: schema.Bool, Default: "true"},
		{Name: "is_verified", DataType: schema.Bool, Default: "false"},
		{Name: "email_verified_at", DataType: schema.Time, Nullable: true},
		{Name: "last_login", DataType: schema.Time, Nullable: true},
		{Name: "created_at", DataType: schema.Time},
		{Name: "updated_at", DataType: schema.Time},
	}
}

// ValidateEmail checks email against EmailRule.
func ValidateEmail(email string) error {
	if err := validate.Var(email, EmailRule); err != nil {
		return apperrors.NewValidationError("email", "must be a valid email of at most 100 characters")
	}
	return nil
}

// BeforeCreate rejects rows whose email is not a valid address.
func (m *UserSchema) BeforeCreate(tx *gorm.DB) error {
	return ValidateEmail(m.Email)
}

// BeforeUpdate checks the new email when an update changes it.
func (m *UserSchema) BeforeUpdate(tx *gorm.DB) error {
	switch dest := tx.Statement.Dest.(type) {
	case *UserSchema:
		if tx.Statement.Changed("Email") {
			return ValidateEmail(dest.Email)
		}
	case map[string]any:
		if v, ok := dest["email"]; ok {
			email, _ := v.(string)
			return ValidateEmail(email)
		}
	}
	return nil
}

// Models lists every mapping owned by this package, in migration order.
func Models() []any {
	return []any{&UserSchema{}}
}

// Describe parses the users mapping with the type registry and naming strategy of db.
func Describe(db *gorm.DB) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&UserSchema{}); err != nil {
		return nil, fmt.Errorf("failed to parse users schema: %w", err)
	}
	return stmt.Schema, nil
}

// Migrate registers the mappings with db, creating or altering tables, checks and indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate users schema: %w", err)
	}
	return nil
}

// fromDomain always sets both flags, so the column defaults only apply to rows
// written without them. Callers of the repository own the defaulting of a new User.
func fromDomain(u *user.User) UserSchema {
	isActive := u.IsActive
	isVerified := u.IsVerified
	return UserSchema{
		ID:                 u.ID,
		Email:              u.Email,
		Password:           u.Password,
		FullName:           u.FullName,
		UserType:           u.UserType,
		CompanyName:        u.CompanyName,
		PhoneNumber:        u.PhoneNumber,
		Address:            u.Address,
		NationalID:         u.NationalID,
		RegistrationNumber: u.RegistrationNumber,
		BankAccountNumber:  u.BankAccountNumber,
		BankName:           u.BankName,
		ProfileImage:       u.ProfileImage,
		IsActive:           &isActive,
		IsVerified:         &isVerified,
		EmailVerifiedAt:    u.EmailVerifiedAt,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:                 m.ID,
		Email:              m.Email,
		Password:           m.Password,
		FullName:           m.FullName,
		UserType:           m.UserType,
		CompanyName:        m.CompanyName,
		PhoneNumber:        m.PhoneNumber,
		Address:            m.Address,
		NationalID:         m.NationalID,
		RegistrationNumber: m.RegistrationNumber,
		BankAccountNumber:  m.BankAccountNumber,
		BankName:           m.BankName,
		ProfileImage:       m.ProfileImage,
		IsActive:           boolOr(m.IsActive, true),
		IsVerified:         boolOr(m.IsVerified, false),
		EmailVerifiedAt:    m.EmailVerifiedAt,
		LastLogin:          m.LastLogin,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
