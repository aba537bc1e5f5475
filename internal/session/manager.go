package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// MaxImageSize caps profile and diploma uploads at registration.
const MaxImageSize = 5_000_000

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the sign-up form. Doctors must name their specialization.
type Registration struct {
	Name           string `form:"name" validate:"required,min=2"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"strongpassword"`
	Role           string `form:"role" validate:"required,oneof=Patient Doctor"`
	PhoneNumber    string `form:"phoneNumber" validate:"min=8"`
	CIN            string `form:"CIN" validate:"min=6"`
	Specialization string `form:"specialization" validate:"required_if=Role Doctor"`
	MedicalHistory string `form:"medicalHistory"`
	DepartmentID   string `form:"departmentId"`

	ProfileImage *apiclient.File `form:"-"`
	DiplomaImage *apiclient.File `form:"-"`
}

// Form converts the registration into the multipart payload the backend expects.
func (r Registration) Form() apiclient.Form {
	var f apiclient.Form
	f.Set("name", r.Name)
	f.Set("email", r.Email)
	f.Set("password", r.Password)
	f.Set("role", r.Role)
	f.Set("phoneNumber", r.PhoneNumber)
	f.Set("CIN", r.CIN)
	f.Set("specialization", r.Specialization)
	f.Set("medicalHistory", r.MedicalHistory)
	f.Set("departmentId", r.DepartmentID)
	if r.ProfileImage != nil {
		f.Files = append(f.Files, *r.ProfileImage)
	}
	if r.DiplomaImage != nil {
		f.Files = append(f.Files, *r.DiplomaImage)
	}
	return f
}

func (r Registration) validate() error {
	if err := utils.Validate(r); err != nil {
		return err
	}
	if r.ProfileImage != nil && len(r.ProfileImage.Data) > MaxImageSize {
		return &utils.ValidationError{Message: "Profile image must be less than 5MB"}
	}
	if r.DiplomaImage != nil && len(r.DiplomaImage.Data) > MaxImageSize {
		return &utils.ValidationError{Message: "Diploma image must be less than 5MB"}
	}
	return nil
}

// Manager signs users in and out against the backend and keeps their sessions.
type Manager struct {
	store  Store
	api    *apiclient.Client
	logger zerolog.Logger
	now    func() time.Time
}

func NewManager(store Store, api *apiclient.Client, logger zerolog.Logger) *Manager {
	return &Manager{store: store, api: api, logger: logger, now: time.Now}
}

// Store returns the persistence backend.
func (m *Manager) Store() Store {
	return m.store
}

type loginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login authenticates with the backend and persists a new session. The
// returned session's role decides the landing page.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := utils.Validate(creds); err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := m.api.Post(ctx, "/auth/login", creds, &resp); err != nil {
		m.logger.Info().Str("email", creds.Email).Str("error", err.Error()).Msg("login rejected")
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" || resp.Token == "" {
		return nil, ErrInvalidResponse
	}

	sess := &Session{
		ID:        uuid.New().String(),
		User:      *resp.User,
		Token:     resp.Token,
		CreatedAt: m.now(),
	}
	if sess.IsExpired(sess.CreatedAt) {
		return nil, ErrExpired
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	m.logger.Info().Str("user_id", sess.User.ID).Str("role", string(sess.User.Role)).Msg("user signed in")
	return sess, nil
}

// Register creates an account. pending is true when the backend accepted the
// account but holds it for admin approval, which it reports as an error.
func (m *Manager) Register(ctx context.Context, reg Registration) (pending bool, err error) {
	if err := reg.validate(); err != nil {
		return false, err
	}

	err = m.api.Upload(ctx, "/auth/register", reg.Form(), nil)
	if err == nil {
		return false, nil
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && awaitingApproval(apiErr.Message) {
		return true, nil
	}
	return false, err
}

func awaitingApproval(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not been validated") || strings.Contains(msg, "admin approval")
}

// Logout forgets the session. Unknown ids are not an error.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Check loads a live session. Expired sessions are deleted and reported as ErrExpired.
func (m *Manager) Check(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("delete expired session")
		}
		return nil, fmt.Errorf("%w: %s", ErrExpired, id)
	}
	return sess, nil
}
