package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type FaceController struct {
	Faces    *services.FaceService
	PageSize int
}

func NewFaceController(faces *services.FaceService, pageSize int) *FaceController {
	return &FaceController{Faces: faces, PageSize: pageSize}
}

func (fc *FaceController) GetAllFaces(c *gin.Context) {
	f := services.FaceFilter{Search: c.Query("search")}
	gender, ok := queryUint8(c, "gender_value")
	if !ok {
		return
	}
	skin, ok := queryUint8(c, "skin_colour_value")
	if !ok {
		return
	}
	age, ok := queryUint8(c, "age_category")
	if !ok {
		return
	}
	if gender != nil {
		v := models.GenderValue(*gender)
		f.GenderValue = &v
	}
	if skin != nil {
		v := models.SkinColourValue(*skin)
		f.SkinColourValue = &v
	}
	if age != nil {
		v := models.AgeCategory(*age)
		f.AgeCategory = &v
	}

	page, err := fc.Faces.List(c.Request.Context(), f, utils.ParsePageRequest(c, fc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of faces", page)
}

func (fc *FaceController) GetFaceByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	face, err := fc.Faces.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Face detail", gin.H{"face": face, "alt_text": face.AltText()})
}

// CreateFace downloads the image at image_url and stores its hash.
func (fc *FaceController) CreateFace(c *gin.Context) {
	var input services.FaceInput
	if !bindJSON(c, &input) {
		return
	}
	face, err := fc.Faces.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Face created", face)
}

func (fc *FaceController) UpdateFace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.FaceClassification
	if !bindJSON(c, &input) {
		return
	}
	face, err := fc.Faces.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Face updated", face)
}

func (fc *FaceController) DeleteFace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := fc.Faces.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
