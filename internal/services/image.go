package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/metrics"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AllowedImageTypes are the content types accepted for upload
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageService handles image-related business logic
type ImageService struct {
	images     ImageStore
	shares     ShareStore
	users      UserStore
	groups     GroupStore
	access     *AccessResolver
	views      *ViewAssembler
	dispatcher *Dispatcher
	assets     storage.Store
	maxBytes   int64
}

// NewImageService creates a new image service
func NewImageService(
	images ImageStore,
	shares ShareStore,
	users UserStore,
	groups GroupStore,
	access *AccessResolver,
	views *ViewAssembler,
	dispatcher *Dispatcher,
	assets storage.Store,
	maxBytes int64,
) *ImageService {
	return &ImageService{
		images:     images,
		shares:     shares,
		users:      users,
		groups:     groups,
		access:     access,
		views:      views,
		dispatcher: dispatcher,
		assets:     assets,
		maxBytes:   maxBytes,
	}
}

// UploadInput describes one image upload with its share targets
type UploadInput struct {
	OwnerID     int64
	File        io.ReadSeeker
	Size        int64
	Description *string
	UserIDs     []int64
	GroupIDs    []int64
}

// Upload validates the file and share targets, stores the asset, records the
// image and its shares, and notifies every recipient. Nothing is stored when
// validation fails.
func (s *ImageService) Upload(ctx context.Context, in UploadInput) (*models.ImageWithShares, error) {
	view, err := s.upload(ctx, in)
	metrics.RecordUpload(in.Size, err)
	return view, err
}

func (s *ImageService) upload(ctx context.Context, in UploadInput) (*models.ImageWithShares, error) {
	if in.File == nil || in.Size <= 0 {
		return nil, apperror.InvalidInput("No file uploaded")
	}
	if in.Size > s.maxBytes {
		return nil, apperror.InvalidInput(fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}

	mtype, err := detectImageType(in.File)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get owner")
	}
	if owner == nil {
		return nil, apperror.Unauthenticated("Unauthorized")
	}

	userIDs, err := s.resolveUserTargets(ctx, in.OwnerID, in.UserIDs)
	if err != nil {
		return nil, err
	}
	groups, err := s.resolveGroupTargets(ctx, in.OwnerID, in.GroupIDs)
	if err != nil {
		return nil, err
	}

	key := uuid.New().String() + mtype.Extension()
	path, err := s.assets.Save(ctx, key, mtype.String(), in.File, in.Size)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to store image")
	}

	image := models.NewImage(in.OwnerID, path, optionalText(in.Description, maxDescriptionLength))
	if err := s.images.Create(ctx, image); err != nil {
		s.removeAsset(ctx, path)
		return nil, apperror.Unexpected(err, "failed to create image")
	}

	for _, userID := range userIDs {
		if err := s.shares.Create(ctx, models.NewUserShare(image.ID, userID)); err != nil {
			s.rollbackUpload(ctx, image)
			return nil, apperror.Unexpected(err, "failed to share image")
		}
	}
	for _, group := range groups {
		if err := s.shares.Create(ctx, models.NewGroupShare(image.ID, group.ID)); err != nil {
			s.rollbackUpload(ctx, image)
			return nil, apperror.Unexpected(err, "failed to share image")
		}
	}

	s.dispatcher.ImageShared(ctx, image, owner, userIDs, groups)

	log.Info().
		Int64("user_id", owner.ID).
		Int64("image_id", image.ID).
		Int("user_shares", len(userIDs)).
		Int("group_shares", len(groups)).
		Msg("Image uploaded")

	view, err := s.views.ImageWithShares(ctx, image)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load image shares")
	}
	return view, nil
}

// detectImageType sniffs the content and rewinds the file
func detectImageType(file io.ReadSeeker) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInvalidInput, "Could not read uploaded file")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, apperror.Unexpected(err, "failed to rewind upload")
	}

	for _, allowed := range AllowedImageTypes {
		if mtype.Is(allowed) {
			return mtype, nil
		}
	}
	return nil, apperror.InvalidInput("Only JPEG, PNG, GIF and WEBP images are allowed")
}

// resolveUserTargets drops duplicates and the owner, and rejects unknown users
func (s *ImageService) resolveUserTargets(ctx context.Context, ownerID int64, ids []int64) ([]int64, error) {
	seen := map[int64]bool{ownerID: true}
	targets := []int64{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.Unexpected(err, "failed to get share target")
		}
		if user == nil {
			return nil, apperror.InvalidInput(fmt.Sprintf("User %d not found", id))
		}
		targets = append(targets, id)
	}
	return targets, nil
}

// resolveGroupTargets requires the owner to be a member of every group shared with
func (s *ImageService) resolveGroupTargets(ctx context.Context, ownerID int64, ids []int64) ([]*models.Group, error) {
	seen := map[int64]bool{}
	groups := []*models.Group{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		group, err := s.groups.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.Unexpected(err, "failed to get share group")
		}
		if group == nil {
			return nil, apperror.InvalidInput(fmt.Sprintf("Group %d not found", id))
		}

		member, err := s.access.IsGroupMember(ctx, id, ownerID)
		if err != nil {
			return nil, apperror.Unexpected(err, "failed to check group membership")
		}
		if !member {
			return nil, apperror.Forbidden(fmt.Sprintf("You are not a member of group %d", id))
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *ImageService) rollbackUpload(ctx context.Context, image *models.Image) {
	if err := s.images.Delete(ctx, image.ID); err != nil {
		log.Error().Err(err).Int64("image_id", image.ID).Msg("Failed to roll back image after share failure")
		return
	}
	s.removeAsset(ctx, image.Path)
}

func (s *ImageService) removeAsset(ctx context.Context, path string) {
	if err := s.assets.Delete(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to delete stored image")
	}
}

// ListOwn returns the caller's images, most recent first
func (s *ImageService) ListOwn(ctx context.Context, userID int64) ([]*models.ImageWithShares, error) {
	images, err := s.images.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get images")
	}
	return s.assemble(ctx, images)
}

// ListByMonth returns the caller's images uploaded in the given month. Month is zero-indexed.
func (s *ImageService) ListByMonth(ctx context.Context, userID int64, year, month int) ([]*models.ImageWithShares, error) {
	if year < 1 || year > 9999 {
		return nil, apperror.InvalidInput("Invalid year")
	}
	if month < 0 || month > 11 {
		return nil, apperror.InvalidInput("Invalid month: expected 0-11")
	}

	from, to := MonthBounds(year, month)
	images, err := s.images.ListByOwnerBetween(ctx, userID, from, to)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get images by date")
	}
	return s.assemble(ctx, images)
}

// MonthBounds returns the half-open UTC interval covering a zero-indexed month
func MonthBounds(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// ListDates returns the months with images for the caller, most recent first
func (s *ImageService) ListDates(ctx context.Context, userID int64) ([]models.ImageDate, error) {
	dates, err := s.images.ListDates(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get image dates")
	}
	return dates, nil
}

// ListShared returns images other users shared with the caller directly or through groups
func (s *ImageService) ListShared(ctx context.Context, userID int64) ([]*models.ImageWithShares, error) {
	images, err := s.images.ListSharedWithUser(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get shared images")
	}
	return s.assemble(ctx, images)
}

// Get returns one image if the caller may see it
func (s *ImageService) Get(ctx context.Context, userID, imageID int64) (*models.ImageWithShares, error) {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to get image")
	}
	if image == nil {
		return nil, apperror.NotFound("Image not found")
	}

	allowed, err := s.access.CanView(ctx, userID, image)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to check image access")
	}
	if !allowed {
		return nil, apperror.Forbidden("You do not have access to this image")
	}

	view, err := s.views.ImageWithShares(ctx, image)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load image shares")
	}
	return view, nil
}

// AuthorizeAsset checks that the caller may download the stored file at path.
// Paths with no image row are reported as not found.
func (s *ImageService) AuthorizeAsset(ctx context.Context, userID int64, path string) error {
	image, err := s.images.GetByPath(ctx, path)
	if err != nil {
		return apperror.Unexpected(err, "failed to get image")
	}
	if image == nil {
		return apperror.NotFound("Image not found")
	}

	allowed, err := s.access.CanView(ctx, userID, image)
	if err != nil {
		return apperror.Unexpected(err, "failed to check image access")
	}
	if !allowed {
		return apperror.Forbidden("You do not have access to this image")
	}
	return nil
}

// Delete removes an owned image with its shares and notifications, then its stored file
func (s *ImageService) Delete(ctx context.Context, userID, imageID int64) error {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return apperror.Unexpected(err, "failed to get image")
	}
	if image == nil {
		return apperror.NotFound("Image not found")
	}
	if image.OwnerID != userID {
		return apperror.Forbidden("Only the owner can delete this image")
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return apperror.Unexpected(err, "failed to delete image")
	}
	s.removeAsset(ctx, image.Path)

	log.Info().Int64("user_id", userID).Int64("image_id", imageID).Msg("Image deleted")
	return nil
}

func (s *ImageService) assemble(ctx context.Context, images []*models.Image) ([]*models.ImageWithShares, error) {
	views, err := s.views.ImagesWithShares(ctx, images)
	if err != nil {
		return nil, apperror.Unexpected(err, "failed to load image shares")
	}
	return views, nil
}
