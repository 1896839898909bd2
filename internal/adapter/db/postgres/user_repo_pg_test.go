package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"
)

func newTestRepo(t *testing.T) *UserRepoPG {
	return NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
}

func seedUsers(t *testing.T, repo *UserRepoPG, users ...user.User) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(users))
	for i := range users {
		id, err := repo.Create(context.Background(), &users[i])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func newUser(name, email string, typ user.Type) user.User {
	return user.User{
		FullName: name,
		Email:    email,
		Password: "$2a$04$hash",
		UserType: typ,
		IsActive: true,
	}
}

func TestUserRepoPG_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newUser("Chidi Okeke", "chidi@darb.ng", user.TypeFounder)
	in.CompanyName = strPtr("Okeke Farms")
	in.PhoneNumber = strPtr("+2348000000000")

	id, err := repo.Create(ctx, &in)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "chidi@darb.ng", got.Email)
	assert.Equal(t, user.TypeFounder, got.UserType)
	require.NotNil(t, got.CompanyName)
	assert.Equal(t, "Okeke Farms", *got.CompanyName)
	assert.Nil(t, got.BankName)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsVerified)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	byEmail, err := repo.GetByEmail(ctx, "chidi@darb.ng")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)
}

func TestUserRepoPG_CreateIgnoresCallerID(t *testing.T) {
	repo := newTestRepo(t)

	in := newUser("Ngozi", "ngozi@darb.ng", user.TypeInvestor)
	in.ID = 999

	id, err := repo.Create(context.Background(), &in)
	require.NoError(t, err)
	assert.NotEqual(t, int64(999), id)
}

func TestUserRepoPG_CreateDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	seedUsers(t, repo, newUser("One", "same@darb.ng", user.TypeFounder))

	dup := newUser("Two", "same@darb.ng", user.TypeInvestor)
	_, err := repo.Create(context.Background(), &dup)
	assert.Error(t, err)
}

func TestUserRepoPG_RejectsMalformedEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bad := newUser("Nope", "not-an-email", user.TypeFounder)
	id, err := repo.Create(ctx, &bad)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, id)

	ids := seedUsers(t, repo, newUser("Sade", "sade@darb.ng", user.TypeInvestor))
	stored, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)

	changed := *stored
	changed.Email = "sade@"
	_, err = repo.Update(ctx, &changed)
	require.ErrorAs(t, err, &ve)

	after, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "sade@darb.ng", after.Email)
}

func TestUserRepoPG_CreateNil(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestUserRepoPG_GetByEmailMissing(t *testing.T) {
	repo := newTestRepo(t)

	u, err := repo.GetByEmail(context.Background(), "nobody@darb.ng")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepoPG_GetByIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepoPG_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ids := seedUsers(t, repo, newUser("Bola", "bola@darb.ng", user.TypeFounder))

	before, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)

	changed := *before
	changed.FullName = "Bola Ade"
	changed.BankName = strPtr("Zenith")
	changed.IsActive = false
	changed.Password = "should-not-change"

	id, err := repo.Update(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, ids[0], id)

	after, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Bola Ade", after.FullName)
	require.NotNil(t, after.BankName)
	assert.Equal(t, "Zenith", *after.BankName)
	assert.False(t, after.IsActive)
	assert.Equal(t, before.Password, after.Password)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

func TestUserRepoPG_UpdateMissing(t *testing.T) {
	repo := newTestRepo(t)

	u := newUser("Ghost", "ghost@darb.ng", user.TypeAdmin)
	u.ID = 77
	_, err := repo.Update(context.Background(), &u)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ids := seedUsers(t, repo, newUser("Temi", "temi@darb.ng", user.TypeInvestor))

	id, err := repo.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], id)

	_, err = repo.Delete(ctx, ids[0])
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = repo.Delete(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}

func TestUserRepoPG_MarkVerifiedAndRecordLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ids := seedUsers(t, repo, newUser("Efe", "efe@darb.ng", user.TypeFounder))

	verifiedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkVerified(ctx, ids[0], verifiedAt))

	loginAt := verifiedAt.Add(time.Minute)
	require.NoError(t, repo.RecordLogin(ctx, ids[0], loginAt))

	require.NoError(t, repo.UpdatePassword(ctx, ids[0], "new-hash"))

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.EmailVerifiedAt)
	assert.True(t, got.EmailVerifiedAt.Equal(verifiedAt))
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(loginAt))
	assert.Equal(t, "new-hash", got.Password)

	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, repo.RecordLogin(ctx, 9999, loginAt), &nf)
}

func TestUserRepoPG_GetPasswordHash(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ids := seedUsers(t, repo, newUser("Tobi", "tobi@darb.ng", user.TypeInvestor))

	require.NoError(t, repo.UpdatePassword(ctx, ids[0], "stored-hash"))

	hash, err := repo.GetPasswordHash(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "stored-hash", hash)

	_, err = repo.GetPasswordHash(ctx, 9999)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserRepoPG_List(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inactive := newUser("Admin Hassan", "hassan@darb.ng", user.TypeAdmin)
	inactive.IsActive = false
	seedUsers(t, repo,
		newUser("John Doe", "JOHN@EXAMPLE.COM", user.TypeFounder),
		newUser("jane smith", "jane@example.com", user.TypeInvestor),
		newUser("John%Test", "john%test@example.com", user.TypeFounder),
		newUser("Jane_Test", "jane_test@example.com", user.TypeInvestor),
		inactive,
	)

	active := true
	tests := []struct {
		name        string
		filter      user.ListFilter
		expectCount int
	}{
		{name: "all", filter: user.ListFilter{}, expectCount: 5},
		{name: "case insensitive", filter: user.ListFilter{Query: "john"}, expectCount: 2},
		{name: "upper case query", filter: user.ListFilter{Query: "JANE"}, expectCount: 2},
		{name: "percent is literal", filter: user.ListFilter{Query: "john%"}, expectCount: 1},
		{name: "underscore is literal", filter: user.ListFilter{Query: "jane_"}, expectCount: 1},
		{name: "by user type", filter: user.ListFilter{UserType: user.TypeFounder}, expectCount: 2},
		{name: "active only", filter: user.ListFilter{IsActive: &active}, expectCount: 4},
		{name: "combined", filter: user.ListFilter{Query: "example.com", UserType: user.TypeInvestor}, expectCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, tt.filter, 1, 10)
			require.NoError(t, err)
			assert.Len(t, users, tt.expectCount)
			assert.Equal(t, int64(tt.expectCount), total)
			for _, u := range users {
				assert.NotEmpty(t, u.Email)
			}
		})
	}
}

func TestUserRepoPG_ListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUsers(t, repo,
		newUser("A", "a@darb.ng", user.TypeFounder),
		newUser("B", "b@darb.ng", user.TypeFounder),
		newUser("C", "c@darb.ng", user.TypeFounder),
	)

	page2, total, err := repo.List(ctx, user.ListFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "c@darb.ng", page2[0].Email)
}

func TestUserRepoPG_ListRejectsInjection(t *testing.T) {
	repo := newTestRepo(t)

	for _, q := range []string{"john UNION SELECT * FROM users", "john OR 1=1", "john --", "<script>x</script>"} {
		users, _, err := repo.List(context.Background(), user.ListFilter{Query: q}, 1, 10)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve, q)
		assert.Contains(t, err.Error(), "invalid search query")
		assert.Nil(t, users)
	}
}
