package source

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const pdfBody = "%PDF-1.4\n%%EOF\n"

func seal(t *testing.T, plain []byte, password string) []byte {
	t.Helper()
	salt := make([]byte, saltLen)
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(salt); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(nonce); err != nil {
		t.Fatal(err)
	}
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	buf.WriteString(envelopeMagic)
	buf.Write(salt)
	buf.Write(nonce)
	buf.Write(gcm.Seal(nil, nonce, plain, nil))
	return buf.Bytes()
}

func TestResolveLocal(t *testing.T) {
	r := New(Options{})
	cases := map[string]string{
		"merged.pdf":                 "merged.pdf",
		"/data/in/email.pdf":         "/data/in/email.pdf",
		"file:///data/in/Forms.pdf":  "/data/in/Forms.pdf",
		"scan#2.pdf":                 "scan#2.pdf",
		"file:///data/in/scan#2.pdf": "/data/in/scan#2.pdf",
	}
	for ref, want := range cases {
		local, err := r.Resolve(context.Background(), ref)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", ref, err)
		}
		if local.Path != want || local.Remote {
			t.Errorf("Resolve(%q) = %+v, want path %q", ref, local, want)
		}
		local.Cleanup()
	}
}

func TestResolveHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(pdfBody))
	}))
	defer srv.Close()

	r := New(Options{HTTPClient: srv.Client()})
	local, err := r.Resolve(context.Background(), srv.URL+"/merged.pdf#page=2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !local.Remote {
		t.Fatal("expected remote input")
	}
	got, err := os.ReadFile(local.Path)
	if err != nil {
		t.Fatalf("read temp: %v", err)
	}
	if string(got) != pdfBody {
		t.Fatalf("temp content = %q", got)
	}
	local.Cleanup()
	if _, err := os.Stat(local.Path); !os.IsNotExist(err) {
		t.Fatalf("temp file not removed: %v", err)
	}

	_, err = r.Resolve(context.Background(), srv.URL+"/missing.pdf")
	if err == nil || !strings.Contains(err.Error(), "http 404") {
		t.Fatalf("err = %v, want http 404", err)
	}
}

func TestResolveHTTPDecrypts(t *testing.T) {
	const password = "s3cret"
	sealed := seal(t, []byte(pdfBody), password)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(sealed)
	}))
	defer srv.Close()

	r := New(Options{HTTPClient: srv.Client(), Password: password})
	local, err := r.Resolve(context.Background(), srv.URL+"/enc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer local.Cleanup()
	got, _ := os.ReadFile(local.Path)
	if string(got) != pdfBody {
		t.Fatalf("decrypted content = %q", got)
	}

	bad := New(Options{HTTPClient: srv.Client(), Password: "wrong"})
	if _, err := bad.Resolve(context.Background(), srv.URL+"/enc.pdf"); err == nil {
		t.Fatal("expected decryption failure with wrong password")
	}
}

func TestDecryptEnvelope(t *testing.T) {
	if _, err := decryptEnvelope([]byte(envelopeMagic+"short"), "x"); err == nil {
		t.Fatal("expected error for truncated envelope")
	}
	if isEnvelope([]byte(pdfBody)) {
		t.Fatal("plain PDF detected as envelope")
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://junior-files/in/merged.pdf")
	if err != nil || bucket != "junior-files" || key != "in/merged.pdf" {
		t.Fatalf("parseS3URL = (%q, %q, %v)", bucket, key, err)
	}
	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := parseS3URL(bad); err == nil {
			t.Errorf("parseS3URL(%q) should fail", bad)
		}
	}
}

func TestCleanupTemps(t *testing.T) {
	old, err := os.CreateTemp("", tempPattern)
	if err != nil {
		t.Fatal(err)
	}
	old.Close()
	fresh, err := os.CreateTemp("", tempPattern)
	if err != nil {
		t.Fatal(err)
	}
	fresh.Close()
	defer os.Remove(fresh.Name())

	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old.Name(), past, past); err != nil {
		t.Fatal(err)
	}

	if n := CleanupTemps(24 * time.Hour); n < 1 {
		t.Fatalf("CleanupTemps removed %d files, want at least 1", n)
	}
	if _, err := os.Stat(old.Name()); !os.IsNotExist(err) {
		t.Fatal("stale temp file kept")
	}
	if _, err := os.Stat(fresh.Name()); err != nil {
		t.Fatal("fresh temp file removed")
	}
}
