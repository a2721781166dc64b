package utils

import (
	"context"
	"slices"

	"github.com/babushkian/OTBot/model"
	"github.com/rs/zerolog/log"
)

// UserDirectory looks up stored users.
type UserDirectory interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// Policy decides who may report and who may review. Roles listed in the configuration
// win over roles stored in the users table.
type Policy struct {
	admins    []string
	reporters []string
	users     UserDirectory
}

func NewPolicy(admins, reporters []string, users UserDirectory) *Policy {
	return &Policy{admins: admins, reporters: reporters, users: users}
}

// Role 返回用户的角色
func (p *Policy) Role(ctx context.Context, userID string) model.Role {
	// 配置文件中的管理员
	if slices.Contains(p.admins, userID) {
		return model.RoleAdmin
	}
	if slices.Contains(p.reporters, userID) {
		return model.RoleReporter
	}
	if p.users != nil {
		u, err := p.users.Get(ctx, userID)
		if err != nil {
			log.Error().Err(err).Str("user", userID).Msg("role lookup failed")
			return model.RoleUser
		}
		if u != nil && u.Role != "" {
			return u.Role
		}
	}
	return model.RoleUser
}

// CanReport reports whether the user may file violation reports. With no reporters
// configured anyone may report.
func (p *Policy) CanReport(ctx context.Context, userID string) bool {
	if len(p.reporters) == 0 {
		return true
	}
	role := p.Role(ctx, userID)
	return role == model.RoleAdmin || role == model.RoleReporter
}

// CanReview reports whether the user may review and close submissions.
func (p *Policy) CanReview(ctx context.Context, userID string) bool {
	return p.Role(ctx, userID) == model.RoleAdmin
}

// Reviewers returns the ids of everyone who reviews submissions.
func (p *Policy) Reviewers(ctx context.Context) ([]string, error) {
	ids := slices.Clone(p.admins)
	if p.users == nil {
		return ids, nil
	}
	stored, err := p.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return ids, err
	}
	for _, u := range stored {
		if !slices.Contains(ids, u.ID) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}
