package passpkg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	const adminPassword = "correct horse battery staple"

	adminHash, err := Hash(adminPassword)
	require.NoError(t, err)

	otherHash, err := Hash("another password")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "AdminPassword",
			password: adminPassword,
			hash:     adminHash,
		},
		{
			name:     "WrongPassword",
			password: "correct horse",
			hash:     adminHash,
			wantErr:  bcrypt.ErrMismatchedHashAndPassword,
		},
		{
			name:     "EmptyPassword",
			password: "",
			hash:     adminHash,
			wantErr:  bcrypt.ErrMismatchedHashAndPassword,
		},
		{
			name:     "HashOfAnotherPassword",
			password: adminPassword,
			hash:     otherHash,
			wantErr:  bcrypt.ErrMismatchedHashAndPassword,
		},
		{
			// An unset ADMIN_PASSWORD_HASH must never let a login through.
			name:     "EmptyHash",
			password: adminPassword,
			hash:     "",
			wantErr:  bcrypt.ErrHashTooShort,
		},
		{
			name:     "PlaintextInsteadOfHash",
			password: adminPassword,
			hash:     adminPassword,
			wantErr:  bcrypt.ErrHashTooShort,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Check(tc.password, tc.hash)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestHash(t *testing.T) {
	t.Parallel()

	const password = "correct horse battery staple"

	hash1, err := Hash(password)
	require.NoError(t, err)

	hash2, err := Hash(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "each hash gets its own salt")
	require.NoError(t, Check(password, hash1))
	require.NoError(t, Check(password, hash2))

	cost, err := bcrypt.Cost([]byte(hash1))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}
