package app_test

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"admissions_backend/internal/app"
	"admissions_backend/internal/config"
	"admissions_backend/internal/services/gateway"
	"admissions_backend/internal/storage"
	"admissions_backend/internal/testutil"
)

type TestServer struct {
	*app.Server
	Config *config.Config
	DB     *gorm.DB
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := testutil.Config()
	db := testutil.NewTestDB(t)
	store, err := storage.NewLocalStorage(config.StorageConfig{Type: "local", BasePath: t.TempDir(), BaseURL: "/uploads"})
	require.NoError(t, err)

	return &TestServer{Server: app.NewServer(cfg, db, store), Config: cfg, DB: db}
}

// SendRequest sends a JSON body (or none) and returns the response with its body as a string.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(req)
}

func (ts *TestServer) SendForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req)
}

func (ts *TestServer) SendFile(t *testing.T, path, token, filename string, content []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return ts.do(req)
}

func (ts *TestServer) do(req *http.Request) (*http.Response, string) {
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	res := rec.Result()
	return res, rec.Body.String()
}

func decode(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), body)
}

// registerAndLogin walks the public OTP flow and returns the student's token.
func registerAndLogin(t *testing.T, ts *TestServer, email string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/student/register", "", map[string]interface{}{
		"email":          email,
		"full_name":      "Asha Rao",
		"phone":          "9876543210",
		"campus":         "Hyderabad",
		"program":        "Mathematics",
		"specialization": "Topology",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/otp/send", "", map[string]interface{}{"email": email})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var sent struct {
		Code string `json:"code"`
	}
	decode(t, body, &sent)
	require.NotEmpty(t, sent.Code)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"otp_code": sent.Code,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, body, &token)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestHealth(t *testing.T) {
	ts := NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "running")
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestRegisterValidation(t *testing.T) {
	ts := NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/student/register", "", map[string]interface{}{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, `"error"`)
}

func TestStudentJourney(t *testing.T) {
	ts := NewTestServer(t)
	email := "journey@example.com"
	token := registerAndLogin(t, ts, email)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/student/register", "", map[string]interface{}{
		"email": email, "full_name": "Again", "campus": "Hyderabad", "program": "Maths", "specialization": "Algebra",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/student/internal/submit", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "payment comes first: %s", body)

	res, body = ts.SendRequest(t, http.MethodPut, "/api/student/internal/update", token, map[string]interface{}{
		"personal_details": map[string]interface{}{"dob": "1994-02-03"},
		"current_step":     2,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "1994-02-03")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/payu/init", token, map[string]interface{}{"coupon_code": "VIG100"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var checkout gateway.CheckoutParams
	decode(t, body, &checkout)
	assert.Equal(t, "900.00", checkout.Amount)

	form := url.Values{
		"txnid":       {checkout.TxnID},
		"status":      {"success"},
		"amount":      {checkout.Amount},
		"productinfo": {checkout.ProductInfo},
		"firstname":   {checkout.FirstName},
		"email":       {checkout.Email},
		"mihpayid":    {"12345"},
		"mode":        {"CC"},
	}
	form.Set("hash", sha512Hex(testutil.MerchantSalt, "success", "", "", "", "", "", "", "", "", "", "",
		checkout.Email, checkout.FirstName, checkout.ProductInfo, checkout.Amount, checkout.TxnID, testutil.MerchantKey))
	res, _ = ts.SendForm(t, "/api/payu/success", form)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, ts.Config.PayU.SuccessRedirect, res.Header.Get("Location"))

	res, body = ts.SendRequest(t, http.MethodGet, "/api/payments?transactionId="+checkout.TxnID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"success"`)

	pdf := []byte("%PDF-1.4\nhello\n%%EOF\n")
	res, body = ts.SendFile(t, "/api/student/internal/upload_document?document_type=resume", token, "cv.pdf", pdf)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var doc struct {
		ID uint `json:"id"`
	}
	decode(t, body, &doc)

	res, body = ts.SendRequest(t, http.MethodGet, fmt.Sprintf("/api/student/internal/documents/%d/download", doc.ID), token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, string(pdf), body)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "cv.pdf")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/student/internal/submit", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "submitted")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/student/internal/messages", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var messages []map[string]interface{}
	decode(t, body, &messages)
	assert.Len(t, messages, 3, "welcome, payment and submission")
}

func sha512Hex(parts ...string) string {
	sum := sha512.Sum512([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// The browser posts exactly the fields /payu/init returns, so they alone must reproduce the hash.
func TestCheckoutHashCoversReturnedFields(t *testing.T) {
	ts := NewTestServer(t)
	token := registerAndLogin(t, ts, "checkout@example.com")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/payu/init", token, map[string]interface{}{})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var fields map[string]string
	decode(t, body, &fields)
	for i := 1; i <= 5; i++ {
		assert.Empty(t, fields[fmt.Sprintf("udf%d", i)])
	}

	want := sha512Hex(fields["key"], fields["txnid"], fields["amount"], fields["productinfo"], fields["firstname"], fields["email"],
		"", "", "", "", "", "", "", "", "", "", testutil.MerchantSalt)
	assert.Equal(t, want, fields["hash"])
}

func TestPhoneLoginWithFormattedNumber(t *testing.T) {
	ts := NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/student/register", "", map[string]interface{}{
		"email": "phone@example.com", "full_name": "Ravi Kumar", "phone": "98765 43210",
		"campus": "Hyderabad", "program": "Mathematics", "specialization": "Topology",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/otp/send", "", map[string]interface{}{
		"type": "phone", "phone": "98765 43210",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var sent struct {
		Code string `json:"code"`
	}
	decode(t, body, &sent)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/otp/verify", "", map[string]interface{}{
		"type": "phone", "phone": "98765 43210", "code": sent.Code,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var verified struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, body, &verified)
	assert.NotEmpty(t, verified.AccessToken)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := NewTestServer(t)

	for _, path := range []string{"/api/student/internal/me", "/api/student/internal/documents", "/api/payu/history"} {
		res, _ := ts.SendRequest(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)

		res, _ = ts.SendRequest(t, http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)
	}
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	ts := NewTestServer(t)
	studentToken := registerAndLogin(t, ts, "student@example.com")

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/admin/stats", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	adminCfg := config.AdminConfig{Email: "admin@example.com", Password: "admin-password"}
	require.NoError(t, ts.Services.AuthService.SeedAdmin(context.Background(), ts.DB, adminCfg))

	res, body := ts.SendRequest(t, http.MethodPost, "/api/admin/login", "", map[string]interface{}{
		"email": adminCfg.Email, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/admin/login", "", map[string]interface{}{
		"email": adminCfg.Email, "password": adminCfg.Password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, body, &token)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/admin/stats", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"registered_students":1`)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/admin/users", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "student@example.com")
	assert.NotContains(t, body, "admin@example.com")
}

func TestStepCacheOverHTTP(t *testing.T) {
	ts := NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/application/steps/personal", "", map[string]interface{}{
		"session_id": "browser-1",
		"data":       map[string]interface{}{"name": "Asha"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"version":1`)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/application/steps/address", "", map[string]interface{}{
		"session_id": "browser-1",
		"data":       map[string]interface{}{"city": "Guntur"},
		"version":    0,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/application/cache?session_id=browser-1", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Asha")
	assert.NotContains(t, body, "Guntur")
}

func TestOTPSendIsRateLimited(t *testing.T) {
	ts := NewTestServer(t)

	var last *http.Response
	for i := 0; i <= ts.Config.OTP.SendPerMinute; i++ {
		last, _ = ts.SendRequest(t, http.MethodPost, "/api/otp/send", "", map[string]interface{}{"email": "spam@example.com"})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.NotEmpty(t, last.Header.Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	ts := NewTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/otp/send", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, _ := ts.do(req)

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://app.test", res.Header.Get("Access-Control-Allow-Origin"))
}
