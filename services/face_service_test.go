package services_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func faceInput(url string) services.FaceInput {
	g, s, a := models.GenderMale, models.SkinColourBlack, models.AgeSenior
	return services.FaceInput{ImageURL: url, GenderValue: &g, SkinColourValue: &s, AgeCategory: &a}
}

func TestFaceStoresImageHash(t *testing.T) {
	db, f := setup(t)
	faces := services.NewFaceService(db, f.Fetcher)

	face, err := faces.Create(ctx, faceInput("https://img.example.test/a.png"))
	require.NoError(t, err)
	assert.Equal(t, services.HashImage([]byte("image:https://img.example.test/a.png")), face.ImageHash)
	assert.Len(t, face.ImageHash, 64)
	assert.Equal(t, "Senior Black Male", face.AltText())
}

func TestFaceImagesMustDiffer(t *testing.T) {
	db, f := setup(t)
	f.Fetcher.Images = map[string][]byte{
		"https://img.example.test/one.png": []byte("same bytes"),
		"https://img.example.test/two.png": []byte("same bytes"),
	}
	faces := services.NewFaceService(db, f.Fetcher)

	_, err := faces.Create(ctx, faceInput("https://img.example.test/one.png"))
	require.NoError(t, err)
	_, err = faces.Create(ctx, faceInput("https://img.example.test/two.png"))
	requireFieldError(t, err, "image_url", utils.CodeUnique)
}

func TestFaceImageFetchFailure(t *testing.T) {
	db, f := setup(t)
	f.Fetcher.Fail = map[string]bool{"https://img.example.test/gone.png": true}
	faces := services.NewFaceService(db, f.Fetcher)

	_, err := faces.Create(ctx, faceInput("https://img.example.test/gone.png"))
	requireFieldError(t, err, "image_url", utils.CodeInvalid)

	_, err = faces.Create(ctx, faceInput("not a url"))
	requireFieldError(t, err, "image_url", utils.CodeInvalid)
	assert.Equal(t, []string{"https://img.example.test/gone.png"}, f.Fetcher.Calls)
}

func TestFaceChoicesAreChecked(t *testing.T) {
	db, f := setup(t)
	faces := services.NewFaceService(db, f.Fetcher)
	in := faceInput("https://img.example.test/b.png")
	bad := models.AgeCategory(12)
	in.AgeCategory = &bad

	_, err := faces.Create(ctx, in)
	requireFieldError(t, err, "age_category", utils.CodeInvalid)
}

func TestFaceUpdateAndProtectedDelete(t *testing.T) {
	db, f := setup(t)
	fx, err := f.BookedSeat(ctx, ten, time.Hour)
	require.NoError(t, err)
	face, err := f.Face(ctx, models.GenderFemale, models.SkinColourWhite, models.AgeChild)
	require.NoError(t, err)
	_, err = services.NewSeatBookingService(db, nil).Update(ctx, fx.SeatBooking.ID, services.SeatBookingInput{
		SeatID: fx.Seat.ID, BookingID: fx.Booking.ID, FaceID: &face.ID,
	})
	require.NoError(t, err)

	faces := services.NewFaceService(db, f.Fetcher)
	g, s, a := models.GenderFemale, models.SkinColourIndian, models.AgeTeenager
	updated, err := faces.Update(ctx, face.ID, services.FaceClassification{GenderValue: &g, SkinColourValue: &s, AgeCategory: &a})
	require.NoError(t, err)
	assert.Equal(t, models.SkinColourIndian, updated.SkinColourValue)
	assert.Equal(t, face.ImageHash, updated.ImageHash)

	err = faces.Delete(ctx, face.ID)
	assert.ErrorIs(t, err, utils.ErrProtected)

	page, err := services.NewSeatBookingService(db, nil).List(ctx, services.SeatBookingFilter{AgeCategory: &a}, utils.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, fx.SeatBooking.ID, page.Items[0].ID)
}

func TestHTTPImageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/face.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("\x89PNG fake"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := services.NewHTTPImageFetcher(2 * time.Second)
	body, err := fetcher.Fetch(ctx, srv.URL+"/face.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), body)

	_, err = fetcher.Fetch(ctx, srv.URL+"/page.html")
	assert.ErrorIs(t, err, services.ErrImageFetch)
	_, err = fetcher.Fetch(ctx, srv.URL+"/missing.png")
	assert.ErrorIs(t, err, services.ErrImageFetch)
}
