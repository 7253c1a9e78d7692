package inbound

import (
	"context"

	"github.com/reportgate/reportgate/internal/access/usecase"
	"github.com/reportgate/reportgate/internal/pkg/router"
)

type uc interface {
	ChallengeIssue(ctx context.Context, in usecase.ChallengeIssueInput) (*usecase.ChallengeIssueOutput, error)
	ChallengeResend(ctx context.Context, in usecase.ChallengeResendInput) (*usecase.ChallengeIssueOutput, error)
	ChallengeVerify(ctx context.Context, in usecase.ChallengeVerifyInput) (*usecase.ChallengeVerifyOutput, error)

	GrantCreate(ctx context.Context, in usecase.GrantCreateInput) (*usecase.GrantCreateOutput, error)
	GrantRevoke(ctx context.Context, in usecase.GrantRevokeInput) error
	ResourceList(ctx context.Context, in usecase.ResourceListInput) (*usecase.ResourceListOutput, error)

	GuestResourceList(ctx context.Context, in usecase.GuestResourceListInput) (*usecase.ResourceListOutput, error)
	AccessCheck(ctx context.Context, in usecase.AccessCheckInput) (*usecase.AccessCheckOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// OTP challenge lifecycle
	r.POST("/api/v1/access/challenges", end.ChallengeIssue)
	r.POST("/api/v1/access/challenges/resend", end.ChallengeResend)
	r.POST("/api/v1/access/challenges/verify", end.ChallengeVerify)

	// Guest surface (guest session token, no platform account)
	r.GET("/api/v1/access/guest/resources", end.GuestResourceList)
	r.GET("/api/v1/access/guest/resources/:id", end.GuestResourceDetail)

	// Grant management (need authenticated & authorization)
	r.POST("/api/v1/access/grants", end.GrantCreate)
	r.DELETE("/api/v1/access/grants/:id", end.GrantRevoke)
	r.GET("/api/v1/access/resources", end.ResourceList)
}
