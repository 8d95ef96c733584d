package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/platform/id"
)

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Secret   string `env:"FUNNELSMITH_EDITOR_GRANT_SECRET"`
	Issuer   string `env:"FUNNELSMITH_EDITOR_GRANT_ISSUER" envDefault:"funnelsmith"`
	Audience string `env:"FUNNELSMITH_EDITOR_GRANT_AUDIENCE" envDefault:"funnelsmith-editor"`
}

// GrantConfig defines how editor grants are verified. An empty Secret leaves
// grant checks disabled and the API open, the local single-user default.
type GrantConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Now      func() time.Time
}

// Enabled reports whether grant verification is configured.
func (cfg GrantConfig) Enabled() bool {
	return len(cfg.Secret) > 0
}

// GrantClaims captures validated editor grant claims.
type GrantClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time
	JWTID     string
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
}

// LoadGrantConfigFromEnv reads editor grant verification configuration. A
// missing secret yields a disabled config, not an error.
func LoadGrantConfigFromEnv(now func() time.Time) (GrantConfig, error) {
	var raw grantEnv
	if err := env.Parse(&raw); err != nil {
		return GrantConfig{}, fmt.Errorf("parse editor grant env: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return GrantConfig{Now: now}, nil
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	if issuer == "" {
		return GrantConfig{}, fmt.Errorf("FUNNELSMITH_EDITOR_GRANT_ISSUER is required")
	}
	if audience == "" {
		return GrantConfig{}, fmt.Errorf("FUNNELSMITH_EDITOR_GRANT_AUDIENCE is required")
	}
	return GrantConfig{
		Secret:   []byte(secret),
		Issuer:   issuer,
		Audience: audience,
		Now:      now,
	}, nil
}

// ValidateGrant verifies an editor grant token against the configured
// secret, issuer, and audience.
func ValidateGrant(grant string, cfg GrantConfig) (GrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.Enabled() || cfg.Issuer == "" || cfg.Audience == "" {
		return GrantClaims{}, errors.New("editor grant verifier is not configured")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return GrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeEditorGrantInvalid,
			"editor grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeEditorGrantInvalid,
			"editor grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant sub is required")
	}
	if parsed.ExpiresAt == nil {
		return GrantClaims{}, apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return GrantClaims{}, apperrors.New(apperrors.CodeEditorGrantExpired, "editor grant is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return GrantClaims{}, apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant not active yet")
		}
	}

	claims := GrantClaims{
		Subject:   parsed.Subject,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// IssueGrant mints a signed editor grant for the given subject. The seed
// command uses it to hand out local development tokens.
func IssueGrant(cfg GrantConfig, subject string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("grant subject is required")
	}
	if !cfg.Enabled() || cfg.Issuer == "" || cfg.Audience == "" {
		return "", errors.New("editor grant issuer is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("grant ttl must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	jwtID, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}
	now := cfg.Now().UTC()
	claims := grantClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        jwtID,
	}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign editor grant: %w", err)
	}
	return signed, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeEditorGrantInvalid, "editor grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}
