package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/persistence/middleware"
)

func TestRedactMiddleware_MasksMatchingProps(t *testing.T) {
	underlying := memory.NewLoader(map[string]string{})
	mw, err := middleware.NewRedactMiddleware([]string{"(?i)email", "^token$"})
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlying)

	in := `{"gaeaKey":"gaea-input","data":{"props":{
		"userEmail":"ana@example.com",
		"token":"abc",
		"tokens":"kept",
		"profile":{"Email":"x@example.com","name":"Ana"},
		"rows":[{"email":"y@example.com"}]
	}}}`
	if err := store.PutInstance(context.Background(), "form", []byte(in)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	raw, err := underlying.GetInstance("form")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Data struct {
			Props map[string]any `json:"props"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	props := got.Data.Props

	if props["userEmail"] != middleware.Mask || props["token"] != middleware.Mask {
		t.Errorf("Expected top-level matches to be masked, got %v", props)
	}
	if props["tokens"] != "kept" {
		t.Errorf("Expected anchored pattern to leave tokens alone, got %v", props["tokens"])
	}
	profile := props["profile"].(map[string]any)
	if profile["Email"] != middleware.Mask || profile["name"] != "Ana" {
		t.Errorf("Expected nested masking, got %v", profile)
	}
	row := props["rows"].([]any)[0].(map[string]any)
	if row["email"] != middleware.Mask {
		t.Errorf("Expected masking inside lists, got %v", row)
	}
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactMiddleware([]string{"("}); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	underlying := memory.NewLoader(map[string]string{})
	redact, err := middleware.NewRedactMiddleware([]string{"secret"})
	if err != nil {
		t.Fatal(err)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, redact, encrypt)

	in := `{"gaeaKey":"gaea-text","data":{"props":{"secret":"s3"}}}`
	if err := store.PutInstance(context.Background(), "t", []byte(in)); err != nil {
		t.Fatal(err)
	}
	out, err := store.GetInstance("t")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"data":{"props":{"secret":"***"}},"gaeaKey":"gaea-text"}` {
		t.Errorf("Expected redacted then encrypted record, got %s", out)
	}
}
