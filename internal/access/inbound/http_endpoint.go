package inbound

import (
	"github.com/reportgate/reportgate/internal/access/usecase"
	"github.com/reportgate/reportgate/internal/pkg/router"
	"github.com/samber/lo"
)

// HTTPEndpoint exposes HTTP handlers for challenge, grant, and guest access workflows.
type HTTPEndpoint struct {
	uc uc
}

// ChallengeIssue issues a one-time code challenge for an email and purpose.
// @Summary Issue challenge
// @Description Creates a one-time code challenge and dispatches the code to the recipient. The response shape does not reveal whether the email is known.
// @Tags Access, Challenges
// @Accept json
// @Produce json
// @Param request body ChallengeIssueRequest true "Challenge payload"
// @Success 200 {object} router.successResponse{data=ChallengeIssueResponse} "Challenge issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Issuance throttled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/challenges [post]
func (h *HTTPEndpoint) ChallengeIssue(r *router.Request) (any, error) {
	var req ChallengeIssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ChallengeIssue(r.Context(), usecase.ChallengeIssueInput{
		Email:   req.Email,
		Purpose: req.Purpose,
	})
	if err != nil {
		return nil, err
	}

	return ChallengeIssueResponse{
		ChallengeID:      resp.ChallengeID,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// ChallengeResend re-issues the code for an existing challenge.
// @Summary Resend challenge
// @Description Issues a new code superseding the referenced challenge, subject to the resend cool-down.
// @Tags Access, Challenges
// @Accept json
// @Produce json
// @Param request body ChallengeResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=ChallengeIssueResponse} "New challenge issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Challenge not found"
// @Failure 429 {object} router.errorResponse "Resend throttled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/challenges/resend [post]
func (h *HTTPEndpoint) ChallengeResend(r *router.Request) (any, error) {
	var req ChallengeResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ChallengeResend(r.Context(), usecase.ChallengeResendInput{ChallengeID: req.ChallengeID})
	if err != nil {
		return nil, err
	}

	return ChallengeIssueResponse{
		ChallengeID:      resp.ChallengeID,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// ChallengeVerify checks a submitted code against a challenge.
// @Summary Verify challenge
// @Description Verifies the one-time code. On success for guest-access challenges a guest session token is returned.
// @Tags Access, Challenges
// @Accept json
// @Produce json
// @Param request body ChallengeVerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=ChallengeVerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/challenges/verify [post]
func (h *HTTPEndpoint) ChallengeVerify(r *router.Request) (any, error) {
	var req ChallengeVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ChallengeVerify(r.Context(), usecase.ChallengeVerifyInput{
		ChallengeID: req.ChallengeID,
		Code:        req.Code,
	})
	if err != nil {
		return nil, err
	}

	return ChallengeVerifyResponse{
		Status:           resp.Status.String(),
		SessionToken:     resp.SessionToken,
		SessionExpiresAt: resp.SessionExpiresAt,
	}, nil
}

// GrantCreate shares a resource with a recipient.
// @Summary Create share grant
// @Description Grants a recipient timed or unlimited access to a resource, replacing any prior grant for the pair.
// @Tags Access, Grants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GrantCreateRequest true "Grant payload"
// @Success 200 {object} router.successResponse{data=GrantCreateResponse} "Grant created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Not allowed"
// @Failure 404 {object} router.errorResponse "Resource not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/grants [post]
func (h *HTTPEndpoint) GrantCreate(r *router.Request) (any, error) {
	var req GrantCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.GrantCreate(r.Context(), usecase.GrantCreateInput{
		ResourceID:     req.ResourceID,
		RecipientEmail: req.RecipientEmail,
		DurationDays:   req.DurationDays,
	})
	if err != nil {
		return nil, err
	}

	return GrantCreateResponse{GrantID: resp.GrantID, ExpiresAt: resp.ExpiresAt}, nil
}

// GrantRevoke revokes a grant.
// @Summary Revoke share grant
// @Description Revokes the grant immediately. Revocation is terminal and independent of time-based expiry.
// @Tags Access, Grants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grant ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Not allowed"
// @Failure 404 {object} router.errorResponse "Grant not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/grants/{id} [delete]
func (h *HTTPEndpoint) GrantRevoke(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.GrantRevoke(r.Context(), usecase.GrantRevokeInput{GrantID: id})
}

// ResourceList lists the resources shared with a recipient.
// @Summary List shared resources
// @Description Enumerates grants for a recipient email with derived status and remaining time. Revoked grants are omitted, expired ones are included.
// @Tags Access, Grants
// @Produce json
// @Security BearerAuth
// @Param recipient_email query string true "Recipient email"
// @Success 200 {object} router.successResponse{data=ResourceListResponse} "Shared resources"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Not allowed"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/resources [get]
func (h *HTTPEndpoint) ResourceList(r *router.Request) (any, error) {
	resp, err := h.uc.ResourceList(r.Context(), usecase.ResourceListInput{
		RecipientEmail: r.GetQuery("recipient_email"),
	})
	if err != nil {
		return nil, err
	}

	return toResourceListResponse(resp), nil
}

// GuestResourceList lists the resources a guest session may access.
// @Summary List guest resources
// @Description Enumerates resources shared with the email bound to the guest session token.
// @Tags Access, Guest
// @Produce json
// @Param X-Guest-Token header string true "Guest session token"
// @Success 200 {object} router.successResponse{data=ResourceListResponse} "Accessible resources"
// @Failure 401 {object} router.errorResponse "Invalid or expired session"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/guest/resources [get]
func (h *HTTPEndpoint) GuestResourceList(r *router.Request) (any, error) {
	resp, err := h.uc.GuestResourceList(r.Context(), usecase.GuestResourceListInput{
		SessionToken: r.Header.Get(headerGuestToken),
	})
	if err != nil {
		return nil, err
	}

	return toResourceListResponse(resp), nil
}

// GuestResourceDetail checks live access to one resource and returns its metadata.
// @Summary Fetch guest resource
// @Description Re-checks the backing grant live and returns resource metadata when access is allowed.
// @Tags Access, Guest
// @Produce json
// @Param X-Guest-Token header string true "Guest session token"
// @Param id path string true "Resource ID"
// @Success 200 {object} router.successResponse{data=GuestResourceDetailResponse} "Access decision"
// @Failure 401 {object} router.errorResponse "Invalid or expired session"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/guest/resources/{id} [get]
func (h *HTTPEndpoint) GuestResourceDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.AccessCheck(r.Context(), usecase.AccessCheckInput{
		SessionToken: r.Header.Get(headerGuestToken),
		ResourceID:   id,
	})
	if err != nil {
		return nil, err
	}

	out := GuestResourceDetailResponse{
		Decision: resp.Decision.String(),
		Remaining: RemainingResponse{
			Unlimited: resp.Remaining.Unlimited,
			Expired:   resp.Remaining.Expired,
			Days:      resp.Remaining.Days,
			Hours:     resp.Remaining.Hours,
		},
	}

	if resp.Resource != nil {
		out.ResourceID = resp.Resource.ID
		out.Title = resp.Resource.Title
		out.Description = resp.Resource.Description
	}

	return out, nil
}

func toResourceListResponse(resp *usecase.ResourceListOutput) ResourceListResponse {
	return ResourceListResponse{
		Resources: lo.Map(resp.Resources, func(e usecase.ResourceEntry, _ int) ResourceEntryResponse {
			return ResourceEntryResponse{
				ResourceID:  e.ResourceID,
				Title:       e.Title,
				Description: e.Description,
				GrantID:     e.GrantID,
				Status:      e.Status.String(),
				Remaining: RemainingResponse{
					Unlimited: e.Remaining.Unlimited,
					Expired:   e.Remaining.Expired,
					Days:      e.Remaining.Days,
					Hours:     e.Remaining.Hours,
				},
				ExpiresAt: e.ExpiresAt,
				ViewCount: e.ViewCount,
			}
		}),
	}
}
