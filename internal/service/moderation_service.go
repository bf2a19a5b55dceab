package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/psds-microservice/support-console/internal/kafka"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/resource"
)

// ModerationAPI is the part of the backend client the content moderation
// tables use.
type ModerationAPI interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	TogglePostHidden(ctx context.Context, id string) (*model.Post, error)
	TogglePostPinned(ctx context.Context, id string) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error

	ListPostReports(ctx context.Context, unresolvedOnly bool) ([]model.PostReport, error)
	ResolvePostReport(ctx context.Context, id string, hidePost bool) (*model.PostReport, error)
	ListUserReports(ctx context.Context, unresolvedOnly bool) ([]model.UserReport, error)
	ResolveUserReport(ctx context.Context, id string) (*model.UserReport, error)

	ListReviews(ctx context.Context) ([]model.Review, error)
	DeleteReview(ctx context.Context, id string) error
	ListCheckIns(ctx context.Context) ([]model.CheckIn, error)
	DeleteCheckIn(ctx context.Context, id string) error

	ListPlaces(ctx context.Context) ([]model.Place, error)
	TogglePlaceActive(ctx context.Context, id string) (*model.Place, error)
}

// ModerationService holds the community and catalog tables. Like users they
// are fetched on demand and patched by id after each confirmed write; a
// delete removes the row.
type ModerationService struct {
	api         ModerationAPI
	posts       *resource.List[model.Post]
	postReports *resource.List[model.PostReport]
	userReports *resource.List[model.UserReport]
	reviews     *resource.List[model.Review]
	checkIns    *resource.List[model.CheckIn]
	places      *resource.List[model.Place]
	log         commandLog
}

func NewModerationService(api ModerationAPI, deps Deps) *ModerationService {
	s := &ModerationService{
		api:         api,
		posts:       resource.NewList[model.Post](),
		postReports: resource.NewList[model.PostReport](),
		userReports: resource.NewList[model.UserReport](),
		reviews:     resource.NewList[model.Review](),
		checkIns:    resource.NewList[model.CheckIn](),
		places:      resource.NewList[model.Place](),
		log:         newCommandLog(deps, "moderation"),
	}
	if deps.Session != nil {
		deps.Session.OnUnauthorized(func(string) { s.Reset() })
	}
	return s
}

// Reset drops every local table.
func (s *ModerationService) Reset() {
	s.posts.Replace(nil)
	s.postReports.Replace(nil)
	s.userReports.Replace(nil)
	s.reviews.Replace(nil)
	s.checkIns.Replace(nil)
	s.places.Replace(nil)
}

func (s *ModerationService) RefreshPosts(ctx context.Context) error {
	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	s.posts.Replace(posts)
	return nil
}

// Posts filters by title or author and paginates the local list.
func (s *ModerationService) Posts(q string, page, size int) resource.Page[model.Post] {
	q = strings.TrimSpace(q)
	return resource.Paginate(s.posts.Filter(func(p model.Post) bool { return p.Matches(q) }), page, size)
}

func (s *ModerationService) TogglePostHidden(ctx context.Context, id string) (*model.Post, error) {
	updated, err := s.api.TogglePostHidden(ctx, id)
	cmd := command{Name: "toggle_post_hidden", Event: kafka.EventPostHiddenToggled, TargetKind: "post", TargetID: id}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.setPostHidden(id, updated.IsHidden)
	cmd.Payload = map[string]interface{}{"is_hidden": updated.IsHidden}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) TogglePostPinned(ctx context.Context, id string) (*model.Post, error) {
	updated, err := s.api.TogglePostPinned(ctx, id)
	cmd := command{Name: "toggle_post_pinned", Event: kafka.EventPostPinnedToggled, TargetKind: "post", TargetID: id}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.posts.Patch(id, func(p *model.Post) { p.IsPinned = updated.IsPinned })
	cmd.Payload = map[string]interface{}{"is_pinned": updated.IsPinned}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) DeletePost(ctx context.Context, id string) error {
	err := s.api.DeletePost(ctx, id)
	cmd := command{Name: "delete_post", Event: kafka.EventPostDeleted, TargetKind: "post", TargetID: id}
	if err != nil {
		return s.log.done(ctx, cmd, err)
	}
	s.posts.Remove(id)
	return s.log.done(ctx, cmd, nil)
}

// RefreshPostReports loads post reports, only open ones when unresolvedOnly.
func (s *ModerationService) RefreshPostReports(ctx context.Context, unresolvedOnly bool) error {
	reports, err := s.api.ListPostReports(ctx, unresolvedOnly)
	if err != nil {
		return fmt.Errorf("list post reports: %w", err)
	}
	s.postReports.Replace(reports)
	return nil
}

func (s *ModerationService) PostReports(page, size int) resource.Page[model.PostReport] {
	return resource.Paginate(s.postReports.All(), page, size)
}

// ResolvePostReport marks the report resolved. With hidePost the reported
// post is hidden as well, both in the report row and in the posts table.
func (s *ModerationService) ResolvePostReport(ctx context.Context, id string, hidePost bool) (*model.PostReport, error) {
	updated, err := s.api.ResolvePostReport(ctx, id, hidePost)
	cmd := command{
		Name: "resolve_post_report", Event: kafka.EventReportResolved,
		TargetKind: "post_report", TargetID: id,
	}
	if hidePost {
		cmd.Detail = "hide post"
	}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}

	postID := updated.Post.ID
	s.postReports.Patch(id, func(r *model.PostReport) {
		r.IsResolved = true
		if postID == "" {
			postID = r.Post.ID
		}
		if hidePost {
			r.Post.IsHidden = true
		}
	})
	if hidePost && postID != "" {
		s.setPostHidden(postID, true)
	}
	cmd.Payload = map[string]interface{}{"hide_post": hidePost, "post_id": postID}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) RefreshUserReports(ctx context.Context, unresolvedOnly bool) error {
	reports, err := s.api.ListUserReports(ctx, unresolvedOnly)
	if err != nil {
		return fmt.Errorf("list user reports: %w", err)
	}
	s.userReports.Replace(reports)
	return nil
}

func (s *ModerationService) UserReports(page, size int) resource.Page[model.UserReport] {
	return resource.Paginate(s.userReports.All(), page, size)
}

func (s *ModerationService) ResolveUserReport(ctx context.Context, id string) (*model.UserReport, error) {
	updated, err := s.api.ResolveUserReport(ctx, id)
	cmd := command{
		Name: "resolve_user_report", Event: kafka.EventUserReportResolved,
		TargetKind: "user_report", TargetID: id,
	}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.userReports.Patch(id, func(r *model.UserReport) { r.IsResolved = true })
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) RefreshReviews(ctx context.Context) error {
	reviews, err := s.api.ListReviews(ctx)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	s.reviews.Replace(reviews)
	return nil
}

func (s *ModerationService) Reviews(page, size int) resource.Page[model.Review] {
	return resource.Paginate(s.reviews.All(), page, size)
}

func (s *ModerationService) DeleteReview(ctx context.Context, id string) error {
	err := s.api.DeleteReview(ctx, id)
	cmd := command{Name: "delete_review", Event: kafka.EventReviewDeleted, TargetKind: "review", TargetID: id}
	if err != nil {
		return s.log.done(ctx, cmd, err)
	}
	s.reviews.Remove(id)
	return s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) RefreshCheckIns(ctx context.Context) error {
	checkIns, err := s.api.ListCheckIns(ctx)
	if err != nil {
		return fmt.Errorf("list check-ins: %w", err)
	}
	s.checkIns.Replace(checkIns)
	return nil
}

func (s *ModerationService) CheckIns(page, size int) resource.Page[model.CheckIn] {
	return resource.Paginate(s.checkIns.All(), page, size)
}

func (s *ModerationService) DeleteCheckIn(ctx context.Context, id string) error {
	err := s.api.DeleteCheckIn(ctx, id)
	cmd := command{Name: "delete_checkin", Event: kafka.EventCheckInDeleted, TargetKind: "checkin", TargetID: id}
	if err != nil {
		return s.log.done(ctx, cmd, err)
	}
	s.checkIns.Remove(id)
	return s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) RefreshPlaces(ctx context.Context) error {
	places, err := s.api.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	s.places.Replace(places)
	return nil
}

func (s *ModerationService) Places(q string, page, size int) resource.Page[model.Place] {
	q = strings.TrimSpace(q)
	return resource.Paginate(s.places.Filter(func(p model.Place) bool { return p.Matches(q) }), page, size)
}

func (s *ModerationService) TogglePlaceActive(ctx context.Context, id string) (*model.Place, error) {
	updated, err := s.api.TogglePlaceActive(ctx, id)
	cmd := command{Name: "toggle_place_active", Event: kafka.EventPlaceActiveToggled, TargetKind: "place", TargetID: id}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.places.Patch(id, func(p *model.Place) { p.IsActive = updated.IsActive })
	cmd.Payload = map[string]interface{}{"is_active": updated.IsActive}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *ModerationService) setPostHidden(id string, hidden bool) {
	if !s.posts.Patch(id, func(p *model.Post) { p.IsHidden = hidden }) {
		s.log.logger.Debug("patched post is not in the local list", "post_id", id)
	}
}
