package client

import (
	"encoding/json"
	"errors"
	"net/http"

	"onboard-pay/internal/pkg/xerrors"

	ory "github.com/ory/kratos-client-go"
)

// kratosErrorBody Kratos 错误响应体，同时兼容 flow 里的 UI 消息
type kratosErrorBody struct {
	Error struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
	UI struct {
		Messages []kratosUIMessage `json:"messages"`
		Nodes    []struct {
			Messages []kratosUIMessage `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
}

type kratosUIMessage struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// parseKratosError 解析 SDK 返回的错误，优先使用 UI 消息 ID，其次使用错误文本
func parseKratosError(operation string, err error) *xerrors.AppError {
	var apiErr *ory.GenericOpenAPIError
	if !errors.As(err, &apiErr) {
		return xerrors.NewKratosError(operation, err)
	}

	appErr := parseKratosErrorBody(operation, apiErr.Body(), err)
	if appErr == nil {
		return xerrors.NewKratosError(operation, err)
	}
	return appErr
}

// parseKratosErrorBody 从原始响应体解析 AppError，无法识别时返回 nil
func parseKratosErrorBody(operation string, body []byte, original error) *xerrors.AppError {
	if len(body) == 0 {
		return nil
	}

	var parsed kratosErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	for _, m := range collectUIMessages(parsed) {
		if m.Type == "error" && m.ID != 0 {
			return xerrors.NewKratosErrorFromID(operation, m.ID, original)
		}
	}

	if parsed.Error.Code == http.StatusConflict {
		return xerrors.FromCode(xerrors.CodeEmailExists).
			WithMetadata("kratos_operation", operation)
	}

	text := parsed.Error.Reason
	if text == "" {
		text = parsed.Error.Message
	}
	if text == "" {
		return nil
	}

	// 5xx 不是用户能修正的问题
	if parsed.Error.Code >= http.StatusInternalServerError {
		return xerrors.NewKratosError(operation, original).
			WithMetadata("kratos_error_text", text)
	}
	return xerrors.NewKratosErrorFromMessage(operation, text, original)
}

func collectUIMessages(parsed kratosErrorBody) []kratosUIMessage {
	msgs := append([]kratosUIMessage{}, parsed.UI.Messages...)
	for _, n := range parsed.UI.Nodes {
		msgs = append(msgs, n.Messages...)
	}
	return msgs
}
