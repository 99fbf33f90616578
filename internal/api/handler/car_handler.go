package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type CarHandler struct {
	cars     *rentalapi.CarAPI
	maxBytes int64
}

// NewCarHandler builds the car views. maxBytes bounds a posted car image.
func NewCarHandler(cars *rentalapi.CarAPI, maxBytes int64) *CarHandler {
	if maxBytes <= 0 {
		maxBytes = rentalapi.DefaultMaxUploadBytes
	}
	return &CarHandler{cars: cars, maxBytes: maxBytes}
}

type carView struct {
	Success     bool        `json:"success"`
	Car         *domain.Car `json:"car"`
	DisplayName string      `json:"displayName"`
}

// carFormRequest is the JSON variant of the admin car editor.
type carFormRequest struct {
	domain.Car
	ImageSource domain.ImageSource `json:"imageSource"`
}

type featureRequest struct {
	Feature string `json:"feature" validate:"required"`
}

// List returns the car catalogue. available=true narrows it to bookable cars.
//
// @Summary      List cars
// @Tags         cars
// @Produce      json
// @Param        available  query     bool  false  "Only bookable cars"
// @Success      200        {object}  listView[domain.Car]
// @Failure      502        {object}  map[string]any
// @Router       /cars [get]
func (h *CarHandler) List(c echo.Context) error {
	params := c.QueryParams()
	list := h.cars.List
	if params.Get("available") == "true" {
		params.Del("available")
		list = h.cars.Available
	}
	res, err := list(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapCars)
}

// Search filters the catalogue.
//
// @Summary      Search cars
// @Tags         cars
// @Produce      json
// @Param        q          query     string  false  "Free text"
// @Param        brand      query     string  false  "Brand"
// @Param        type       query     string  false  "Body type"
// @Param        minPrice   query     number  false  "Minimum price per day"
// @Param        maxPrice   query     number  false  "Maximum price per day"
// @Param        available  query     bool    false  "Availability"
// @Success      200        {object}  listView[domain.Car]
// @Router       /cars/search [get]
func (h *CarHandler) Search(c echo.Context) error {
	var s domain.CarSearch
	var available bool
	err := echo.QueryParamsBinder(c).
		String("q", &s.Query).
		String("brand", &s.Brand).
		String("type", &s.Type).
		Float64("minPrice", &s.MinPrice).
		Float64("maxPrice", &s.MaxPrice).
		Bool("available", &available).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid search filters")
	}
	if c.QueryParam("available") != "" {
		s.Available = &available
	}

	res, err := h.cars.Search(c.Request().Context(), s)
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapCars)
}

// Get returns one car.
//
// @Summary      Car detail
// @Tags         cars
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  carView
// @Failure      404  {object}  map[string]any
// @Router       /cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	res, err := h.cars.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	car, err := rentalapi.UnwrapCar(res.Data)
	if err != nil {
		return rentalapi.NormalizeError(err, "Failed to fetch car details.")
	}
	return c.JSON(http.StatusOK, carView{Success: true, Car: car, DisplayName: car.DisplayName()})
}

// Create adds a car from the admin editor.
//
// @Summary      Create car
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body      carFormRequest  true  "Car with imageSource url or local"
// @Success      201   {object}  rentalapi.Result
// @Failure      400   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /admin/cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	form, err := h.bindForm(c)
	if err != nil {
		return err
	}
	res, err := h.cars.Save(c.Request().Context(), "", form)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusCreated, res)
}

// Update edits a car from the admin editor.
//
// @Summary      Update car
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      string          true  "Car ID"
// @Param        body  body      carFormRequest  true  "Car with imageSource url or local"
// @Success      200   {object}  rentalapi.Result
// @Router       /admin/cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	form, err := h.bindForm(c)
	if err != nil {
		return err
	}
	res, err := h.cars.Save(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// Delete removes a car.
//
// @Summary      Delete car
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	res, err := h.cars.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// ToggleAvailability flips whether a car can be booked.
//
// @Summary      Toggle car availability
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/cars/{id}/availability [patch]
func (h *CarHandler) ToggleAvailability(c echo.Context) error {
	res, err := h.cars.ToggleAvailability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// AddFeature tags a car with a feature.
//
// @Summary      Add car feature
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Car ID"
// @Param        body  body      featureRequest  true  "Feature"
// @Success      200   {object}  rentalapi.Result
// @Router       /admin/cars/{id}/features [post]
func (h *CarHandler) AddFeature(c echo.Context) error {
	var req featureRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.cars.AddFeature(c.Request().Context(), c.Param("id"), req.Feature)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// RemoveFeature drops a feature from a car.
//
// @Summary      Remove car feature
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Car ID"
// @Param        body  body      featureRequest  true  "Feature"
// @Success      200   {object}  rentalapi.Result
// @Router       /admin/cars/{id}/features [delete]
func (h *CarHandler) RemoveFeature(c echo.Context) error {
	var req featureRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.cars.RemoveFeature(c.Request().Context(), c.Param("id"), req.Feature)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// bindForm reads the editor from JSON or from a multipart form carrying the
// picture under "image".
func (h *CarHandler) bindForm(c echo.Context) (rentalapi.CarForm, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		var req carFormRequest
		if err := c.Bind(&req); err != nil {
			return rentalapi.CarForm{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		return rentalapi.CarForm{Car: req.Car, ImageSource: req.ImageSource}, nil
	}

	car, err := carFromForm(c)
	if err != nil {
		return rentalapi.CarForm{}, err
	}
	form := rentalapi.CarForm{Car: car, ImageSource: domain.ImageSource(c.FormValue("imageSource"))}

	// A missing file is reported by the facade's own validation.
	form.ImageFile, err = readUpload(c, "image", h.maxBytes)
	return form, err
}

func carFromForm(c echo.Context) (domain.Car, error) {
	car := domain.Car{
		Brand:    c.FormValue("brand"),
		Model:    c.FormValue("model"),
		Type:     c.FormValue("type"),
		Color:    c.FormValue("color"),
		ImageURL: c.FormValue("imageUrl"),
	}
	if v := c.FormValue("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return car, echo.NewHTTPError(http.StatusBadRequest, "year must be a number")
		}
		car.Year = year
	}
	if v := c.FormValue("pricePerDay"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return car, echo.NewHTTPError(http.StatusBadRequest, "pricePerDay must be a number")
		}
		car.PricePerDay = price
	}
	car.Available = c.FormValue("available") == "true"
	if params, err := c.FormParams(); err == nil {
		car.Features = params["features"]
	}
	return car, nil
}
