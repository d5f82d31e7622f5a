package internal

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// StaticCredentialProvider signs outgoing requests with a fixed access/secret
// key pair. Credential loading is external to the engine (spec treats
// credentials as opaque); this is a minimal concrete signer so the Transport
// has something to call when credentials are supplied.
type StaticCredentialProvider struct {
	accessKey string
	secretKey string
	mutex     sync.RWMutex
}

// NewStaticCredentialProvider builds a provider from an access/secret pair.
func NewStaticCredentialProvider(accessKey, secretKey string) *StaticCredentialProvider {
	return &StaticCredentialProvider{accessKey: accessKey, secretKey: secretKey}
}

// LoadCredentialsFromEnv builds a provider from S3FETCH_ACCESS_KEY/
// S3FETCH_SECRET_KEY, the env-var fallback for credentials when no file path
// is configured.
func LoadCredentialsFromEnv() (*StaticCredentialProvider, error) {
	provider := NewStaticCredentialProvider(os.Getenv("S3FETCH_ACCESS_KEY"), os.Getenv("S3FETCH_SECRET_KEY"))
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return provider, nil
}

// LoadCredentialsFromFile reads access_key=... / secret_key=... lines from a
// file, in the spirit of the teacher's line-oriented credential file parsing.
func LoadCredentialsFromFile(path string) (*StaticCredentialProvider, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseCredentialLine(line)
		if err != nil {
			return nil, fmt.Errorf("invalid credentials format at line %d: %w", lineNum, err)
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading credentials file: %w", err)
	}

	provider := NewStaticCredentialProvider(values["access_key"], values["secret_key"])
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return provider, nil
}

func parseCredentialLine(line string) (key, value string, err error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected key=value, got %q", line)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// Validate reports whether the provider has usable credentials.
func (p *StaticCredentialProvider) Validate() error {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.accessKey == "" {
		return fmt.Errorf("access_key is required")
	}
	if p.secretKey == "" {
		return fmt.Errorf("secret_key is required")
	}
	return nil
}

// Sign attaches an Authorization header computed as an HMAC-SHA256 over the
// request method, URL and date, plus an X-Amz-Date header carrying the
// signing timestamp.
func (p *StaticCredentialProvider) Sign(req SignableRequest) {
	p.mutex.RLock()
	accessKey, secretKey := p.accessKey, p.secretKey
	p.mutex.RUnlock()

	date := time.Now().UTC().Format("20060102T150405Z")
	toSign := req.Method() + "\n" + req.URL() + "\n" + date

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(toSign))
	signature := hex.EncodeToString(mac.Sum(nil))

	header := req.Header()
	header["X-Amz-Date"] = []string{date}
	header["Authorization"] = []string{fmt.Sprintf("S3FETCH-HMAC-SHA256 Credential=%s, Signature=%s", accessKey, signature)}
}
