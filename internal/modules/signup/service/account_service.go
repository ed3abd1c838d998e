package service

import (
	"context"

	"onboard-pay/internal/modules/signup/client"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/xerrors"
)

// AccountService 在 Kratos 中创建账号并触发验证邮件
type AccountService struct {
	identities IdentityProvider
}

// NewAccountService 创建账号服务
func NewAccountService(identities IdentityProvider) *AccountService {
	return &AccountService{identities: identities}
}

// CreateAccount 创建账号，返回新账号 ID
// 验证邮件发送失败不影响账号创建结果，用户可以在登录页重新申请
func (s *AccountService) CreateAccount(ctx context.Context, req AccountRequest) (*CreatedAccount, error) {
	metadata := make(map[string]interface{}, len(req.Data)+1)
	for k, v := range req.Data {
		metadata[k] = v
	}
	if req.EmailRedirectTo != "" {
		metadata["email_redirect_to"] = req.EmailRedirectTo
	}

	identity, err := s.identities.CreateIdentity(ctx, client.CreateIdentityRequest{
		Email:          req.Email,
		Password:       req.Password,
		Phone:          req.Phone,
		MetadataPublic: metadata,
	})
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.Id == "" {
		return nil, xerrors.FromCode(xerrors.CodeAccountCreationFailed).
			WithService("account_service", "CreateAccount")
	}

	if err := s.identities.SendVerificationEmail(ctx, req.Email); err != nil {
		log.WarnContext(ctx, "发送验证邮件失败",
			log.Any("error", err),
			"identity_id", identity.Id)
	}

	return &CreatedAccount{
		ID:    identity.Id,
		Email: req.Email,
	}, nil
}
