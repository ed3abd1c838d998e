// Package signup Swagger 文档，由 handler 上的注解生成
// swag init -g internal/modules/signup/signup_module.go -o docs/signup --parseInternal
package signup

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/activation": {
            "get": {
                "description": "校验支付会话、创建账号并安排跳转；Accept: text/html 时返回页面",
                "produces": ["application/json", "text/html"],
                "tags": ["支付"],
                "summary": "激活账号",
                "parameters": [
                    {"type": "string", "description": "checkout 会话 ID", "name": "session_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "激活成功", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_ActivationView"}},
                    "400": {"description": "缺少会话 ID", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_ActivationView"}},
                    "402": {"description": "支付未完成", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_ActivationView"}},
                    "409": {"description": "会话已使用或邮箱已注册", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_ActivationView"}}
                }
            }
        },
        "/api/v1/payments/verify": {
            "post": {
                "description": "查询 Stripe checkout 会话，已付款时返回注册邮箱",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["支付"],
                "summary": "校验付款",
                "parameters": [
                    {"description": "checkout 会话 ID", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.VerifyPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "已付款", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_VerifyPaymentResponse"}},
                    "400": {"description": "缺少会话 ID", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}},
                    "402": {"description": "未付款", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}},
                    "410": {"description": "注册信息已过期", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}}
                }
            }
        },
        "/api/v1/signup/checkout": {
            "post": {
                "description": "校验表单，暂存加密后的凭证，返回 Stripe Checkout 跳转地址",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["注册"],
                "summary": "创建支付会话",
                "parameters": [
                    {"description": "注册表单", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "创建成功", "schema": {"$ref": "#/definitions/response.ResponseResult-service_CheckoutResult"}},
                    "400": {"description": "表单校验失败", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}},
                    "403": {"description": "手机号未验证", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}},
                    "502": {"description": "支付服务错误", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}}
                }
            }
        },
        "/api/v1/signup/otp": {
            "post": {
                "description": "规范化手机号并发送 6 位验证码，60 秒内不能重复发送",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["注册"],
                "summary": "发送手机验证码",
                "parameters": [
                    {"description": "手机号", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SendOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "发送成功", "schema": {"$ref": "#/definitions/response.ResponseResult-service_OTPTicket"}},
                    "400": {"description": "手机号无效", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}},
                    "429": {"description": "发送过于频繁", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}}
                }
            }
        },
        "/api/v1/signup/otp/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["注册"],
                "summary": "校验手机验证码",
                "parameters": [
                    {"description": "手机号和验证码", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.VerifyOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "验证通过", "schema": {"$ref": "#/definitions/response.ResponseResult-handler_VerifyOTPResponse"}},
                    "400": {"description": "验证码错误或已过期", "schema": {"$ref": "#/definitions/response.ResponseResult-response_ErrorData"}}
                }
            }
        },
        "/success": {
            "get": {
                "produces": ["text/html"],
                "tags": ["支付"],
                "summary": "支付回跳页",
                "parameters": [
                    {"type": "string", "description": "checkout 会话 ID", "name": "session_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "HTML 页面", "schema": {"type": "string"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "依赖健康状态",
                "responses": {
                    "200": {"description": "全部依赖可用", "schema": {"$ref": "#/definitions/tasks.Snapshot"}},
                    "503": {"description": "存在不可用的依赖", "schema": {"$ref": "#/definitions/tasks.Snapshot"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ActivationView": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "notifications": {"type": "array", "items": {"$ref": "#/definitions/notify.Notification"}},
                "redirect_after_ms": {"type": "integer", "example": 3000},
                "redirect_url": {"type": "string", "example": "https://app.cryptotrack.org"},
                "state": {"type": "string", "enum": ["loading", "error", "success"], "example": "success"},
                "title": {"type": "string", "example": "Payment Successful!"}
            }
        },
        "handler.CheckoutRequest": {
            "type": "object",
            "required": ["confirm_password", "email", "password", "phone"],
            "properties": {
                "confirm_password": {"type": "string"},
                "email": {"type": "string", "example": "jane@example.com"},
                "password": {"type": "string"},
                "phone": {"type": "string", "example": "+15551234567"}
            }
        },
        "handler.SendOTPRequest": {
            "type": "object",
            "required": ["phone"],
            "properties": {
                "phone": {"type": "string", "example": "(555) 123-4567"}
            }
        },
        "handler.VerifyOTPRequest": {
            "type": "object",
            "required": ["code", "phone"],
            "properties": {
                "code": {"type": "string", "example": "123456"},
                "phone": {"type": "string", "example": "+15551234567"}
            }
        },
        "handler.VerifyOTPResponse": {
            "type": "object",
            "properties": {
                "phone": {"type": "string", "example": "+15551234567"},
                "verified": {"type": "boolean", "example": true}
            }
        },
        "handler.VerifyPaymentRequest": {
            "type": "object",
            "required": ["sessionId"],
            "properties": {
                "sessionId": {"type": "string", "example": "cs_test_a1b2c3"}
            }
        },
        "handler.VerifyPaymentResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "jane@example.com"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "notify.Notification": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "sent_at": {"type": "string"},
                "severity": {"type": "string", "enum": ["default", "destructive", "success"]},
                "title": {"type": "string"},
                "trace_id": {"type": "string"}
            }
        },
        "service.CheckoutResult": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "service.OTPTicket": {
            "type": "object",
            "properties": {
                "expires_in": {"type": "integer"},
                "phone": {"type": "string"},
                "request_id": {"type": "string"},
                "resend_after": {"type": "integer"}
            }
        },
        "tasks.DependencyStatus": {
            "type": "object",
            "properties": {
                "checked_at": {"type": "string"},
                "error": {"type": "string"},
                "name": {"type": "string"},
                "up": {"type": "boolean"}
            }
        },
        "tasks.Snapshot": {
            "type": "object",
            "properties": {
                "checked_at": {"type": "string"},
                "dependencies": {"type": "array", "items": {"$ref": "#/definitions/tasks.DependencyStatus"}},
                "healthy": {"type": "boolean"}
            }
        },
        "xerrors.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "tag": {"type": "string"}
            }
        },
        "response.ErrorData": {
            "type": "object",
            "properties": {
                "fields": {"type": "array", "items": {"$ref": "#/definitions/xerrors.FieldError"}}
            }
        },
        "response.ResponseResult-handler_ActivationView": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/handler.ActivationView"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        },
        "response.ResponseResult-handler_VerifyOTPResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/handler.VerifyOTPResponse"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        },
        "response.ResponseResult-handler_VerifyPaymentResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/handler.VerifyPaymentResponse"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        },
        "response.ResponseResult-response_ErrorData": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/response.ErrorData"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        },
        "response.ResponseResult-service_CheckoutResult": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/service.CheckoutResult"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        },
        "response.ResponseResult-service_OTPTicket": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {"$ref": "#/definitions/service.OTPTicket"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "integer"},
                "trace_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Onboard Pay API",
	Description:      "注册 + 支付 + 账号激活",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
