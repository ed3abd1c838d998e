package client

import (
	"context"
	"fmt"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/xerrors"

	ory "github.com/ory/kratos-client-go"
)

// CreateIdentityRequest 创建身份所需的数据
type CreateIdentityRequest struct {
	Email    string
	Password string
	Phone    string
	// MetadataPublic 写入 identity 的 metadata_public
	MetadataPublic map[string]interface{}
}

// KratosClient 封装 Ory Kratos Admin API 和 Public API 调用
type KratosClient struct {
	adminURL     string
	publicURL    string
	schemaID     string
	adminClient  *ory.APIClient
	publicClient *ory.APIClient
}

// NewKratosClient 创建 Kratos 客户端
func NewKratosClient(adminURL, publicURL, schemaID string) *KratosClient {
	if schemaID == "" {
		schemaID = "default"
	}

	return &KratosClient{
		adminURL:     adminURL,
		publicURL:    publicURL,
		schemaID:     schemaID,
		adminClient:  newAPIClient(adminURL),
		publicClient: newAPIClient(publicURL),
	}
}

func newAPIClient(url string) *ory.APIClient {
	cfg := ory.NewConfiguration()
	cfg.Servers = []ory.ServerConfiguration{
		{
			URL: url,
		},
	}
	return ory.NewAPIClient(cfg)
}

// CreateIdentity 在 Kratos 中创建带密码凭证的身份
func (c *KratosClient) CreateIdentity(ctx context.Context, req CreateIdentityRequest) (*ory.Identity, error) {
	traits := map[string]interface{}{
		"email": req.Email,
	}
	if req.Phone != "" {
		traits["phone"] = req.Phone
	}

	password := req.Password
	credentials := ory.IdentityWithCredentials{
		Password: &ory.IdentityWithCredentialsPassword{
			Config: &ory.IdentityWithCredentialsPasswordConfig{
				Password: &password,
			},
		},
	}

	body := ory.CreateIdentityBody{
		SchemaId:    c.schemaID,
		Traits:      traits,
		Credentials: &credentials,
	}
	if len(req.MetadataPublic) > 0 {
		body.MetadataPublic = req.MetadataPublic
	}

	identity, resp, err := c.adminClient.IdentityAPI.CreateIdentity(ctx).
		CreateIdentityBody(body).
		Execute()
	if err != nil {
		appErr := parseKratosError("CreateIdentity", err)
		log.WarnContext(ctx, "创建 Kratos identity 失败",
			log.Any("error", appErr),
			"email", req.Email)
		return nil, appErr.WithService("kratos_client", "CreateIdentity")
	}

	if resp != nil && resp.StatusCode >= 400 {
		return nil, xerrors.NewKratosAPIError("CreateIdentity", resp.StatusCode).
			WithService("kratos_client", "CreateIdentity")
	}

	log.InfoContext(ctx, "成功创建 Kratos identity",
		"identity_id", identity.Id,
		"email", req.Email)

	return identity, nil
}

// SendVerificationEmail 通过原生验证流程让 Kratos 发送验证码邮件
func (c *KratosClient) SendVerificationEmail(ctx context.Context, email string) error {
	flow, resp, err := c.publicClient.FrontendAPI.CreateNativeVerificationFlow(ctx).Execute()
	if err != nil {
		return parseKratosError("CreateVerificationFlow", err).
			WithService("kratos_client", "SendVerificationEmail")
	}
	if resp != nil && resp.StatusCode >= 400 {
		return xerrors.NewKratosAPIError("CreateVerificationFlow", resp.StatusCode).
			WithService("kratos_client", "SendVerificationEmail")
	}

	updateBody := ory.UpdateVerificationFlowBody{
		UpdateVerificationFlowWithCodeMethod: &ory.UpdateVerificationFlowWithCodeMethod{
			Method: "code",
			Email:  &email,
		},
	}

	_, resp, err = c.publicClient.FrontendAPI.UpdateVerificationFlow(ctx).
		Flow(flow.Id).
		UpdateVerificationFlowBody(updateBody).
		Execute()
	if err != nil {
		return parseKratosError("UpdateVerificationFlow", err).
			WithService("kratos_client", "SendVerificationEmail").
			WithMetadata("flow_id", flow.Id)
	}
	if resp != nil && resp.StatusCode >= 400 {
		return xerrors.NewKratosAPIError("UpdateVerificationFlow", resp.StatusCode).
			WithService("kratos_client", "SendVerificationEmail")
	}

	log.InfoContext(ctx, "验证邮件已发送", "email", email, "flow_id", flow.Id)
	return nil
}

// IsReady Kratos 就绪探测
func (c *KratosClient) IsReady(ctx context.Context) error {
	_, resp, err := c.adminClient.MetadataAPI.IsReady(ctx).Execute()
	if err != nil {
		return fmt.Errorf("kratos not ready: %w", err)
	}
	if resp != nil && resp.StatusCode >= 400 {
		return fmt.Errorf("kratos not ready: status %d", resp.StatusCode)
	}
	return nil
}
