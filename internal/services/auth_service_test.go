package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/testutil"
)

func TestSignUpFirstUserIsAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()

	has, err := HasUsers(db)
	require.NoError(t, err)
	assert.False(t, has)

	first, err := SignUp(db, auth, Credentials{Email: "Admin@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "admin@example.com", first.Email)
	assert.Equal(t, []string{models.RoleAdmin}, auth.roles["admin@example.com"])

	second, err := SignUp(db, auth, Credentials{Email: "vet@example.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsultant, second.Role)

	has, err = HasUsers(db)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSignUpConcurrentFirstUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()

	const n = 8
	var wg sync.WaitGroup
	users := make([]*models.User, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i], errs[i] = SignUp(db, auth, Credentials{Email: fmt.Sprintf("user%d@example.com", i), Password: "secret1"})
		}(i)
	}
	wg.Wait()

	admins := 0
	for i := range users {
		require.NoError(t, errs[i])
		if users[i].Role == models.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestSignUpProviderFailureFreesAdminSeat(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()
	auth.users["taken@example.com"] = "elsewhere"

	_, err := SignUp(db, auth, Credentials{Email: "taken@example.com", Password: "secret1"})
	requireCode(t, err, 400)

	user, err := SignUp(db, auth, Credentials{Email: "admin@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	next, err := SignUp(db, auth, Credentials{Email: "vet@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsultant, next.Role)
}

func TestSignUpRejects(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()

	_, err := SignUp(db, auth, Credentials{Email: "not-an-email", Password: "secret1"})
	requireCode(t, err, 400)
	_, err = SignUp(db, auth, Credentials{Email: "a@example.com", Password: "123"})
	requireCode(t, err, 400)

	_, err = SignUp(db, auth, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = SignUp(db, auth, Credentials{Email: "a@example.com", Password: "secret1"})
	ce := requireCode(t, err, 400)
	assert.Equal(t, "AuthError", ce.Type)
}

func TestSignIn(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()
	auth.users["legacy@example.com"] = "secret1"

	res, err := SignIn(db, auth, Credentials{Email: "legacy@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "token-legacy@example.com", res.AccessToken)
	assert.Equal(t, models.RoleConsultant, res.User.Role)

	_, err = SignIn(db, auth, Credentials{Email: "legacy@example.com", Password: "wrong-pw"})
	requireCode(t, err, 401)
}

func TestUserForSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := newFakeAuth()
	user, err := SignUp(db, auth, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	auth.sessions["cookie-1"] = user.ID

	got, err := UserForSession(db, auth, "cookie-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.Can(models.PermRecordsDelete))

	_, err = UserForSession(db, auth, "stale")
	assert.Error(t, err)
}
