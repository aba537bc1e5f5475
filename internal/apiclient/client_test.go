package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func TestGetUnwrapsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/departments", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"1","name":"Cardiology"}]}`))
	}))
	defer srv.Close()

	var got []item
	err := New(srv.URL + "/api/").Get(context.Background(), "/departments", &got)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Name: "Cardiology"}}, got)
}

func TestGetPlainPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"_id":"u1"},"token":"abc"}`))
	}))
	defer srv.Close()

	var got struct {
		User  item   `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, New(srv.URL).Get(context.Background(), "/auth/me", &got))
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "abc", got.Token)
}

func TestBearerTokenIsBoundPerCopy(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	base := New(srv.URL)
	authed := base.WithToken("tok-1")

	require.NoError(t, base.Get(context.Background(), "/x", nil))
	require.NoError(t, authed.Get(context.Background(), "/x", nil))

	assert.Equal(t, []string{"", "Bearer tok-1"}, seen)
	assert.Empty(t, base.Token())
	assert.Equal(t, "tok-1", authed.Token())
}

func TestPostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Neurology", body["name"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"_id":"9","name":"Neurology"}}`))
	}))
	defer srv.Close()

	var got item
	err := New(srv.URL).Post(context.Background(), "/departments", map[string]string{"name": "Neurology"}, &got)
	require.NoError(t, err)
	assert.Equal(t, "9", got.ID)
}

func TestServerMessagePassedThroughVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"This time slot is already booked"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).Put(context.Background(), "/appointments/1/status", map[string]string{"status": "Confirmed"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "This time slot is already booked", apiErr.Error())
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestErrorFieldAndGenericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/with-error" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid doctor"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>boom</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Delete(context.Background(), "/with-error", nil)
	assert.EqualError(t, err, "Invalid doctor")

	err = c.Delete(context.Background(), "/other", nil)
	assert.EqualError(t, err, MsgGeneric)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/doctors", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, MsgNoResponse, apiErr.Message)
}

func TestUploadSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Dr. Lee", r.FormValue("name"))
		assert.Empty(t, r.FormValue("specialization"))

		file, header, err := r.FormFile("diplomaImage")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "diploma.png", header.Filename)
		assert.Equal(t, []byte("PNG"), data)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"d1","name":"Dr. Lee"}`))
	}))
	defer srv.Close()

	var form Form
	form.Set("name", "Dr. Lee")
	form.Set("specialization", "")
	form.Files = append(form.Files, File{Field: "diplomaImage", Filename: "diploma.png", Data: []byte("PNG")})

	var got item
	require.NoError(t, New(srv.URL).WithToken("t").Upload(context.Background(), "/doctors", form, &got))
	assert.Equal(t, "d1", got.ID)
}

func TestUploadPutUsesPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Flu", r.FormValue("diagnosis"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var form Form
	form.Set("diagnosis", "Flu")
	require.NoError(t, New(srv.URL).UploadPut(context.Background(), "/medical-history/1", form, nil))
}
