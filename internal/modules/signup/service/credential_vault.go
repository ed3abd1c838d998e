package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"onboard-pay/internal/pkg/redis"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/secretbox"
)

const keyHandoff = "signup:handoff:"

// Credentials 支付期间暂存的注册凭证
type Credentials struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// handoffClaims 写入支付 metadata 的交接令牌，只携带 vault id
type handoffClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CredentialVault 密码加密后暂存在 Redis，支付服务商只拿到签名令牌
type CredentialVault struct {
	store      KeyValueStore
	sealKey    [32]byte
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewCredentialVault secret 同时派生加密密钥和签名密钥
func NewCredentialVault(store KeyValueStore, secret string, ttl time.Duration) *CredentialVault {
	signing := sha256.Sum256([]byte("handoff-signing:" + secret))
	return &CredentialVault{
		store:      store,
		sealKey:    sha256.Sum256([]byte(secret)),
		signingKey: signing[:],
		ttl:        ttl,
		now:        time.Now,
	}
}

// Seal 加密保存凭证，返回交接令牌和 vault id
func (v *CredentialVault) Seal(ctx context.Context, creds Credentials) (string, string, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return "", "", xerrors.NewWithError(xerrors.CodeInternalError, "failed to encode credentials", err)
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", "", xerrors.NewWithError(xerrors.CodeInternalError, "failed to generate nonce", err)
	}
	sealed := secretbox.Seal(nonce[:], payload, &nonce, &v.sealKey)

	vaultID := uuid.NewString()
	if err := v.store.SetWithTTL(ctx, keyHandoff+vaultID, base64.StdEncoding.EncodeToString(sealed), v.ttl); err != nil {
		return "", "", xerrors.NewCacheError("vault_seal", err).
			WithService("credential_vault", "Seal")
	}

	now := v.now()
	claims := handoffClaims{
		Email: creds.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   vaultID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.signingKey)
	if err != nil {
		_ = v.store.DeleteKey(ctx, keyHandoff+vaultID)
		return "", "", xerrors.NewWithError(xerrors.CodeInternalError, "failed to sign handoff token", err)
	}
	return token, vaultID, nil
}

// Open 校验令牌并解密凭证，不删除 vault 条目
func (v *CredentialVault) Open(ctx context.Context, token string) (*Credentials, string, error) {
	claims := &handoffClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, "", xerrors.NewWithError(xerrors.CodeInvalidToken, "invalid handoff token", err).
			WithService("credential_vault", "Open")
	}

	raw, err := v.store.GetString(ctx, keyHandoff+claims.Subject)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, "", xerrors.FromCode(xerrors.CodeCredentialsUnavailable).
				WithService("credential_vault", "Open")
		}
		return nil, "", xerrors.NewCacheError("vault_open", err).
			WithService("credential_vault", "Open")
	}

	creds, err := v.unseal(raw)
	if err != nil {
		return nil, "", xerrors.NewWithError(xerrors.CodeCredentialsUnavailable,
			xerrors.CodeCredentialsUnavailable.Message(), err).
			WithService("credential_vault", "Open")
	}
	if creds.Email != claims.Email {
		return nil, "", xerrors.New(xerrors.CodeInvalidToken, "handoff token does not match stored credentials").
			WithService("credential_vault", "Open")
	}
	return creds, claims.Subject, nil
}

// Discard 删除 vault 条目
func (v *CredentialVault) Discard(ctx context.Context, vaultID string) error {
	if vaultID == "" {
		return nil
	}
	if err := v.store.DeleteKey(ctx, keyHandoff+vaultID); err != nil {
		return xerrors.NewCacheError("vault_discard", err).
			WithService("credential_vault", "Discard")
	}
	return nil
}

func (v *CredentialVault) unseal(raw string) (*Credentials, error) {
	sealed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	if len(sealed) < 24+secretbox.Overhead {
		return nil, fmt.Errorf("sealed credentials too short")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	payload, ok := secretbox.Open(nil, sealed[24:], &nonce, &v.sealKey)
	if !ok {
		return nil, fmt.Errorf("sealed credentials failed authentication")
	}

	var creds Credentials
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}
