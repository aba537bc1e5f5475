package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/config"
	"hospital-portal/internal/models"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestLandingPage(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"", "/doctor"},
		{"/doctor/availability", "/doctor/availability"},
		{"//evil.example.com", "/doctor"},
		{"https://evil.example.com", "/doctor"},
		{"/auth/login?redirect=/x", "/doctor"},
		{"/\\evil.example", "/doctor"},
		{"/\\/evil.example", "/doctor"},
		{"/doctor\\..\\x", "/doctor"},
		{"/\t/evil.example", "/doctor"},
		{"/doctor/appointments?status=Pending", "/doctor/appointments?status=Pending"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, landingPage(tc.target, models.RoleDoctor), tc.target)
	}
}

func TestRegister(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		message     string
		wantCode    int
		wantPending bool
	}{
		{"created", http.StatusCreated, "User registered", http.StatusCreated, false},
		{"awaiting approval", http.StatusForbidden, "Your account has not been validated by an admin yet", http.StatusCreated, true},
		{"duplicate email", http.StatusConflict, "Email already in use", http.StatusConflict, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotFile string
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/register", r.URL.Path)
				if _, fh, err := r.FormFile("diplomaImage"); err == nil {
					gotFile = fh.Filename
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": tc.message})
			}))
			defer backend.Close()

			api := apiclient.New(backend.URL)
			h := NewAuthHandler(
				session.NewManager(session.NewMemoryStore(time.Hour), api, zerolog.Nop()),
				store.NewRegistry(api, store.Options{}),
				config.SessionConfig{CookieName: "portal_session"},
			)
			r := gin.New()
			r.POST("/auth/register", h.Register)

			req := multipartRequest(t, http.MethodPost, "/auth/register", map[string]string{
				"name":           "Dr. Haddad",
				"email":          "haddad@example.com",
				"password":       "Str0ng!pass",
				"role":           "Doctor",
				"phoneNumber":    "0612345678",
				"CIN":            "AB123456",
				"specialization": "Cardiology",
			}, map[string][]byte{"diplomaImage": []byte("png")})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.wantCode, w.Code, w.Body.String())
			assert.Equal(t, "diplomaImage.png", gotFile)
			if tc.wantCode == http.StatusCreated {
				var body struct {
					Data struct {
						Pending bool `json:"pending"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.wantPending, body.Data.Pending)
			}
		})
	}
}

func TestRegisterValidatesBeforeCallingBackend(t *testing.T) {
	called := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer backend.Close()

	api := apiclient.New(backend.URL)
	h := NewAuthHandler(session.NewManager(session.NewMemoryStore(time.Hour), api, zerolog.Nop()), store.NewRegistry(api, store.Options{}), config.SessionConfig{})
	r := gin.New()
	r.POST("/auth/register", h.Register)

	req := multipartRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Dr. Haddad", "email": "haddad@example.com", "password": "weak",
		"role": "Doctor", "phoneNumber": "0612345678", "CIN": "AB123456",
	}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestFormFileSizeLimit(t *testing.T) {
	r := gin.New()
	var gotErr error
	r.POST("/upload", func(c *gin.Context) {
		_, gotErr = formFile(c, "profileImage")
		c.Status(http.StatusNoContent)
	})

	big := bytes.Repeat([]byte{0}, session.MaxImageSize+1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/upload", nil, map[string][]byte{"profileImage": big}))

	var valErr *utils.ValidationError
	require.ErrorAs(t, gotErr, &valErr)
	assert.Contains(t, valErr.Message, "5MB")
}

func TestFormFileMissing(t *testing.T) {
	r := gin.New()
	var (
		got    *apiclient.File
		gotErr error
	)
	r.POST("/upload", func(c *gin.Context) {
		got, gotErr = formFile(c, "profileImage")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/upload", map[string]string{"name": "x"}, nil))

	assert.NoError(t, gotErr)
	assert.Nil(t, got)
}

func TestBindRecordMultipart(t *testing.T) {
	r := gin.New()
	var (
		in    models.MedicalRecordInput
		files []apiclient.File
		err   error
	)
	r.POST("/records", func(c *gin.Context) {
		in, files, err = bindRecord(c)
		c.Status(http.StatusNoContent)
	})

	req := multipartRequest(t, http.MethodPost, "/records", map[string]string{
		"patientId":    "p1",
		"diagnosis":    "Hypertension",
		"medications":  `[{"name":"Amlodipine","dosage":"5mg","frequency":"daily","duration":"30 days"}]`,
		"vitalSigns":   `{"bloodPressure":"150/95","heartRate":"82"}`,
		"followUpDate": "2026-11-15",
	}, map[string][]byte{"attachments": []byte("%PDF")})
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, err)
	assert.Equal(t, "p1", in.PatientID)
	require.Len(t, in.Medications, 1)
	assert.Equal(t, "Amlodipine", in.Medications[0].Name)
	assert.Equal(t, "150/95", in.VitalSigns.BloodPressure)
	require.NotNil(t, in.FollowUpDate)
	assert.Equal(t, time.November, in.FollowUpDate.Month())
	require.Len(t, files, 1)
	assert.Equal(t, "attachments", files[0].Field)
}

func TestBindRecordRejectsBadNestedJSON(t *testing.T) {
	r := gin.New()
	var err error
	r.POST("/records", func(c *gin.Context) {
		_, _, err = bindRecord(c)
		c.Status(http.StatusNoContent)
	})

	req := multipartRequest(t, http.MethodPost, "/records", map[string]string{
		"patientId":   "p1",
		"diagnosis":   "Flu",
		"medications": "ibuprofen",
	}, nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var valErr *utils.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.True(t, strings.HasPrefix(valErr.Message, "medications"))
	assert.Equal(t, http.StatusBadRequest, utils.StatusFor(err))
}

func TestHandlersRequireSessionState(t *testing.T) {
	r := gin.New()
	r.GET("/departments", NewDepartmentHandler().GetDepartments)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
