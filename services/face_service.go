package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgFaceImageUnique = "Face with this Image hash already exists."
	msgFaceChoice      = "Select a valid choice. That choice is not one of the available choices."

	maxFaceImageBytes = 5 << 20
)

var ErrImageFetch = errors.New("image could not be fetched")

// ImageFetcher downloads the raw bytes of a face picture.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher fetches images over HTTP(S) and refuses anything that is
// not served as an image.
type HTTPImageFetcher struct {
	Client *http.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrImageFetch, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrImageFetch, ct)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFaceImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	if len(body) > maxFaceImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageFetch, maxFaceImageBytes)
	}
	return body, nil
}

type FaceInput struct {
	ImageURL        string                  `json:"image_url" validate:"required,url,max=500"`
	GenderValue     *models.GenderValue     `json:"gender_value" validate:"required"`
	SkinColourValue *models.SkinColourValue `json:"skin_colour_value" validate:"required"`
	AgeCategory     *models.AgeCategory     `json:"age_category" validate:"required"`
}

// FaceClassification is the editable part of a stored face.
type FaceClassification struct {
	GenderValue     *models.GenderValue     `json:"gender_value" validate:"required"`
	SkinColourValue *models.SkinColourValue `json:"skin_colour_value" validate:"required"`
	AgeCategory     *models.AgeCategory     `json:"age_category" validate:"required"`
}

type FaceFilter struct {
	GenderValue     *models.GenderValue
	SkinColourValue *models.SkinColourValue
	AgeCategory     *models.AgeCategory
	Search          string
}

type FaceService struct {
	DB      *gorm.DB
	Fetcher ImageFetcher
}

func NewFaceService(db *gorm.DB, fetcher ImageFetcher) *FaceService {
	if fetcher == nil {
		fetcher = NewHTTPImageFetcher(10 * time.Second)
	}
	return &FaceService{DB: db, Fetcher: fetcher}
}

func (s *FaceService) List(ctx context.Context, f FaceFilter, page utils.PageRequest) (utils.Page[models.Face], error) {
	q := s.DB.WithContext(ctx).Model(&models.Face{}).Order("id")
	if f.GenderValue != nil {
		q = q.Where("gender_value = ?", *f.GenderValue)
	}
	if f.SkinColourValue != nil {
		q = q.Where("skin_colour_value = ?", *f.SkinColourValue)
	}
	if f.AgeCategory != nil {
		q = q.Where("age_category = ?", *f.AgeCategory)
	}
	if f.Search != "" {
		q = q.Where("image_hash LIKE ?", f.Search+"%")
	}
	return utils.Paginate[models.Face](q, page)
}

func (s *FaceService) Get(ctx context.Context, id uint) (*models.Face, error) {
	var face models.Face
	if err := first(s.DB.WithContext(ctx), &face, "face", id); err != nil {
		return nil, err
	}
	return &face, nil
}

// Create downloads the image before opening the transaction and stores the
// SHA-256 of its bytes, which must be unique across faces.
func (s *FaceService) Create(ctx context.Context, in FaceInput) (*models.Face, error) {
	verr := validateStruct(in)
	if verr.HasErrors() {
		return nil, verr
	}
	if err := validateFaceChoices(in.GenderValue, in.SkinColourValue, in.AgeCategory).OrNil(); err != nil {
		return nil, err
	}

	body, err := s.Fetcher.Fetch(ctx, in.ImageURL)
	if err != nil {
		utils.ErrorLogger.Printf("Fetch face image %s: %v", in.ImageURL, err)
		return nil, utils.NewValidationError("image_url", "The image could not be downloaded.", utils.CodeInvalid)
	}
	face := models.Face{
		ImageURL:        in.ImageURL,
		ImageHash:       HashImage(body),
		GenderValue:     *in.GenderValue,
		SkinColourValue: *in.SkinColourValue,
		AgeCategory:     *in.AgeCategory,
	}

	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Face{}, "image_hash = ?", face.ImageHash)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewValidationError("image_url", msgFaceImageUnique, utils.CodeUnique)
		}
		return tx.Omit(clause.Associations).Create(&face).Error
	})
	if err != nil {
		return nil, err
	}
	return &face, nil
}

func (s *FaceService) Update(ctx context.Context, id uint, in FaceClassification) (*models.Face, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	if err := validateFaceChoices(in.GenderValue, in.SkinColourValue, in.AgeCategory).OrNil(); err != nil {
		return nil, err
	}
	var face models.Face
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &face, "face", id); err != nil {
			return err
		}
		face.GenderValue = *in.GenderValue
		face.SkinColourValue = *in.SkinColourValue
		face.AgeCategory = *in.AgeCategory
		return tx.Save(&face).Error
	})
	if err != nil {
		return nil, err
	}
	return &face, nil
}

// Delete is refused while a seat booking shows the face.
func (s *FaceService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var face models.Face
		if err := first(tx, &face, "face", id); err != nil {
			return err
		}
		used, err := exists(tx, &models.SeatBooking{}, "face_id = ?", id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("face %d: %w", id, utils.ErrProtected)
		}
		return tx.Delete(&face).Error
	})
}

// HashImage returns the hex SHA-256 digest of image bytes.
func HashImage(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func validateFaceChoices(g *models.GenderValue, s *models.SkinColourValue, a *models.AgeCategory) *utils.ValidationError {
	verr := &utils.ValidationError{}
	if g != nil && !g.Valid() {
		verr.Add("gender_value", msgFaceChoice, utils.CodeInvalid)
	}
	if s != nil && !s.Valid() {
		verr.Add("skin_colour_value", msgFaceChoice, utils.CodeInvalid)
	}
	if a != nil && !a.Valid() {
		verr.Add("age_category", msgFaceChoice, utils.CodeInvalid)
	}
	return verr
}
