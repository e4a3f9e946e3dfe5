package votesystem

import (
	"context"
	"net/http"
	"unicode/utf8"

	"bot_dashboard/internal/model"
	"bot_dashboard/pkg/errorx"
)

// 鉴权与校验错误消息
const (
	msgUserIDMissing    = "User ID is missing."
	msgBlacklisted      = "You have been blacklisted from using the bot."
	msgNoPermission     = "You do not have permission to perform this action."
	msgFeatureIDMissing = "Feature ID is missing."
	msgUnknownFeature   = "Unknown featureReq ID."
)

// ValidateContent 校验标题与正文，按固定优先级返回第一个错误
// 长度按字符（rune）计算，空字段按长度 0 参与最小长度检查
func ValidateContent(s *Settings, title, body string) error {
	titleLen := utf8.RuneCountInString(title)
	bodyLen := utf8.RuneCountInString(body)

	switch {
	case s.RequireTitle && title == "":
		return errorx.New(http.StatusBadRequest, `"title" is required.`)
	case s.RequireBody && body == "":
		return errorx.New(http.StatusBadRequest, `"body" is required.`)
	case title != "" && s.MaxTitleLength > 0 && titleLen > s.MaxTitleLength:
		return errorx.Newf(http.StatusBadRequest, `"title" may not be longer than %d characters.`, s.MaxTitleLength)
	case titleLen < s.MinTitleLength:
		return errorx.Newf(http.StatusBadRequest, `"title" may not be shorter than %d characters.`, s.MinTitleLength)
	case body != "" && s.MaxBodyLength > 0 && bodyLen > s.MaxBodyLength:
		return errorx.Newf(http.StatusBadRequest, `"body" may not be longer than %d characters.`, s.MaxBodyLength)
	case bodyLen < s.MinBodyLength:
		return errorx.Newf(http.StatusBadRequest, `"body" may not be shorter than %d characters.`, s.MinBodyLength)
	}
	return nil
}

// Requirement 操作的归属要求
// 零值表示不检查归属；RequireOwner 要求管理员；
// AllowUser 非空时该用户与管理员均可通过
type Requirement struct {
	RequireOwner bool
	AllowUser    string
}

func (r Requirement) active() bool {
	return r.RequireOwner || r.AllowUser != ""
}

// validate 统一鉴权入口，依次检查：
//  1. 用户 ID 是否为空
//  2. 是否在黑名单中
//  3. 归属要求
//  4. featureID 非 nil 时检查其存在性
//
// 检查通过且传入了 featureID 时，返回已加载的功能请求
func (s *Service) validate(ctx context.Context, userID string, req Requirement, featureID *string) (*model.FeatureRequest, error) {
	if userID == "" {
		return nil, errorx.New(http.StatusUnauthorized, msgUserIDMissing)
	}

	blacklisted, err := s.store.IsBlacklisted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, errorx.New(http.StatusForbidden, msgBlacklisted)
	}

	if req.active() && userID != req.AllowUser && !s.cfg.IsOwner(userID) {
		return nil, errorx.New(http.StatusForbidden, msgNoPermission)
	}

	if featureID == nil {
		return nil, nil
	}
	if *featureID == "" {
		return nil, errorx.New(http.StatusBadRequest, msgFeatureIDMissing)
	}
	feature, err := s.store.Get(ctx, *featureID)
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, errorx.New(http.StatusBadRequest, msgUnknownFeature)
	}
	return feature, nil
}
