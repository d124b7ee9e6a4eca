package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"Asha","phone":"9000000000","address":{"addressLine1":"4 Park St","city":"Kolkata","state":"WB","pincode":"700016"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})
	user, err := c.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)

	addr := user.DeliveryAddress()
	require.NotNil(t, addr)
	assert.True(t, addr.SameAsClientAddress)
	assert.Equal(t, "Asha", addr.RecipientName)
	assert.Equal(t, "Kolkata", addr.City)
	assert.Equal(t, "9000000000", addr.ContactNumber)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})
	_, err := c.GetUserWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUser_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":500,"message":"db is down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})

	_, err := c.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "db is down")

	_, err = c.GetUserWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceDegraded)
}

func TestDeliveryAddress_NoAddress(t *testing.T) {
	var u *User
	assert.Nil(t, u.DeliveryAddress())
	assert.Nil(t, (&User{Name: "x"}).DeliveryAddress())
}
