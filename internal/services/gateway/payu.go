package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"admissions_backend/internal/config"
)

var ErrNotConfigured = errors.New("payu merchant key or salt missing")

// CheckoutParams is the form the browser posts to the hosted checkout page.
type CheckoutParams struct {
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SURL        string `json:"surl"`
	FURL        string `json:"furl"`
	Hash        string `json:"hash"`
	PaymentURL  string `json:"payment_url"`
}

// Callback is the subset of the gateway's form post the service acts on.
type Callback struct {
	TxnID             string
	Status            string
	Amount            string
	ProductInfo       string
	FirstName         string
	Email             string
	MihpayID          string
	Mode              string
	Error             string
	ErrorMessage      string
	Hash              string
	AdditionalCharges string
	UDF               [5]string
	Raw               map[string]string
}

// ParseCallback reads the gateway fields out of a flattened form.
func ParseCallback(form map[string]string) Callback {
	cb := Callback{
		TxnID:             strings.TrimSpace(form["txnid"]),
		Status:            form["status"],
		Amount:            form["amount"],
		ProductInfo:       form["productinfo"],
		FirstName:         form["firstname"],
		Email:             form["email"],
		MihpayID:          form["mihpayid"],
		Mode:              form["mode"],
		Error:             form["error"],
		ErrorMessage:      form["error_Message"],
		Hash:              strings.ToLower(strings.TrimSpace(form["hash"])),
		AdditionalCharges: form["additionalCharges"],
		Raw:               form,
	}
	for i := range cb.UDF {
		cb.UDF[i] = form["udf"+strconv.Itoa(i+1)]
	}
	return cb
}

// Succeeded reports the gateway's own verdict.
func (c Callback) Succeeded() bool {
	return strings.EqualFold(c.Status, "success")
}

// PayU signs checkout requests and verifies callbacks with SHA-512 over pipe-joined fields.
type PayU struct {
	key        string
	salt       string
	paymentURL string
}

func NewPayU(cfg config.PayUConfig) *PayU {
	return &PayU{
		key:        cfg.MerchantKey,
		salt:       cfg.MerchantSalt,
		paymentURL: cfg.PaymentURL,
	}
}

func (p *PayU) Configured() bool {
	return p.key != "" && p.salt != ""
}

func (p *PayU) PaymentURL() string {
	return p.paymentURL
}

// FormatAmount renders an amount the way both sides hash it.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func sha512Hex(parts ...string) string {
	sum := sha512.Sum512([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// RequestHash is sha512(key|txnid|amount|productinfo|firstname|email|||||||||||salt).
// udf1..udf5 are not used, so every signed value is in the form the browser posts.
func (p *PayU) RequestHash(params CheckoutParams) string {
	parts := []string{params.Key, params.TxnID, params.Amount, params.ProductInfo, params.FirstName, params.Email}
	parts = append(parts, make([]string, 10)...)
	parts = append(parts, p.salt)
	return sha512Hex(parts...)
}

// ResponseHash is the reverse sequence the gateway signs its callback with.
func (p *PayU) ResponseHash(cb Callback) string {
	parts := make([]string, 0, 18)
	if cb.AdditionalCharges != "" {
		parts = append(parts, cb.AdditionalCharges)
	}
	parts = append(parts, p.salt, cb.Status, "", "", "", "", "")
	for i := len(cb.UDF) - 1; i >= 0; i-- {
		parts = append(parts, cb.UDF[i])
	}
	parts = append(parts, cb.Email, cb.FirstName, cb.ProductInfo, cb.Amount, cb.TxnID, p.key)
	return sha512Hex(parts...)
}

// Checkout fills in key and hash for a new transaction.
func (p *PayU) Checkout(params CheckoutParams) (CheckoutParams, error) {
	if !p.Configured() {
		return params, ErrNotConfigured
	}
	params.Key = p.key
	params.PaymentURL = p.paymentURL
	params.Hash = p.RequestHash(params)
	return params, nil
}

// VerifyCallback checks the callback hash in constant time.
func (p *PayU) VerifyCallback(cb Callback) bool {
	if !p.Configured() || cb.Hash == "" {
		return false
	}
	expected := p.ResponseHash(cb)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(cb.Hash)) == 1
}
