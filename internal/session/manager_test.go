package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

func newManager(t *testing.T, handler http.HandlerFunc) (*Manager, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := NewMemoryStore(time.Hour)
	m := NewManager(store, apiclient.New(srv.URL), zerolog.Nop())
	m.now = func() time.Time { return now }
	return m, store
}

func TestLoginPersistsSession(t *testing.T) {
	token := mintToken(t, "d1", now.Add(time.Hour))
	m, store := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "doc@example.com", creds.Email)
		fmt.Fprintf(w, `{"user":{"_id":"d1","name":"Dr. Lee","role":"doctor"},"token":%q}`, token)
	})

	sess, err := m.Login(context.Background(), Credentials{Email: "doc@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.RoleDoctor, sess.User.Role)
	assert.Equal(t, "/doctor", sess.User.Role.HomePath())
	assert.Equal(t, 1, store.Len())

	loaded, err := m.Check(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "d1", loaded.User.ID)
}

func TestLoginRequiresUserAndToken(t *testing.T) {
	m, store := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"_id":"d1","role":"Doctor"}}`))
	})

	_, err := m.Login(context.Background(), Credentials{Email: "doc@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.Equal(t, "Invalid response from server", err.Error())
	assert.Equal(t, 0, store.Len())
}

func TestLoginPassesBackendMessage(t *testing.T) {
	m, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	_, err := m.Login(context.Background(), Credentials{Email: "doc@example.com", Password: "secret1"})
	assert.EqualError(t, err, "Invalid credentials")
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
}

func TestLoginValidatesCredentials(t *testing.T) {
	m, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	})

	_, err := m.Login(context.Background(), Credentials{Email: "nope", Password: "x"})
	var valErr *utils.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestCheckDeletesExpiredSession(t *testing.T) {
	m, store := newManager(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Save(context.Background(), newSession(t, "old", now.Add(-time.Minute))))

	_, err := m.Check(context.Background(), "old")
	assert.True(t, errors.Is(err, ErrExpired))
	assert.Equal(t, 0, store.Len())

	_, err = m.Check(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLogout(t *testing.T) {
	m, store := newManager(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Save(context.Background(), newSession(t, "s", now.Add(time.Hour))))

	require.NoError(t, m.Logout(context.Background(), "s"))
	require.NoError(t, m.Logout(context.Background(), "unknown"))
	assert.Equal(t, 0, store.Len())
}

func validRegistration() Registration {
	return Registration{
		Name:        "Amira",
		Email:       "amira@example.com",
		Password:    "Secret#123",
		Role:        "Patient",
		PhoneNumber: "0612345678",
		CIN:         "AB123456",
	}
}

func TestRegisterSendsMultipart(t *testing.T) {
	m, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Amira", r.FormValue("name"))
		assert.Equal(t, "AB123456", r.FormValue("CIN"))
		_, header, err := r.FormFile("profileImage")
		require.NoError(t, err)
		assert.Equal(t, "me.jpg", header.Filename)
		w.WriteHeader(http.StatusCreated)
	})

	reg := validRegistration()
	reg.ProfileImage = &apiclient.File{Field: "profileImage", Filename: "me.jpg", Data: []byte("jpg")}
	pending, err := m.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestRegisterPendingApproval(t *testing.T) {
	m, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Your account has not been validated by an admin yet"}`))
	})

	reg := validRegistration()
	reg.Role = "Doctor"
	reg.Specialization = "Cardiology"
	pending, err := m.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestRegisterValidation(t *testing.T) {
	m, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	})

	cases := map[string]func(*Registration){
		"weak password":        func(r *Registration) { r.Password = "password" },
		"admin role":           func(r *Registration) { r.Role = "Admin" },
		"short phone":          func(r *Registration) { r.PhoneNumber = "123" },
		"short CIN":            func(r *Registration) { r.CIN = "12" },
		"doctor without field": func(r *Registration) { r.Role = "Doctor" },
		"oversized diploma":    func(r *Registration) { r.DiplomaImage = &apiclient.File{Field: "diplomaImage", Data: make([]byte, MaxImageSize+1)} },
		"name too short":       func(r *Registration) { r.Name = "A" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			reg := validRegistration()
			mutate(&reg)
			_, err := m.Register(context.Background(), reg)
			var valErr *utils.ValidationError
			assert.True(t, errors.As(err, &valErr), "got %v", err)
		})
	}
}
