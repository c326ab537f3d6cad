package helper

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"zhiyi-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

const (
	textError          = `error`
	textOk             = `ok`
	codeSuccess        = 200
	codeCreated        = 201
	codeBadRequest     = 400
	codeUnauthorized   = 401
	codeNotFound       = 404
	codeConflict       = 409
	codeValidation     = 422
	codeTooManyRequest = 429
	codeInternalError  = 500
	codeBadGateway     = 502
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  string
	Data     interface{}
	Code     int
	CodeType string
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper wires validator.v9 with English messages.
func NewHTTPHelper() *HTTPHelper {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	return &HTTPHelper{Validate: validate, Translator: trans}
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		unauthorized models.ErrorUnauthorized
		notFound     models.ErrorNotFound
		conflict     models.ErrorConflict
		internal     models.ErrorInternalServer
		invalid      models.ErrorValidation
		validation   validator.ValidationErrors
	)

	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &internal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// SetResponse ...
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendServiceError picks the envelope for an error returned by a service.
// ErrorInternalServer messages are shown as written; other untyped errors are
// reported as internal without their text.
func (u *HTTPHelper) SendServiceError(c *gin.Context, err error) error {
	var validation validator.ValidationErrors
	if errors.As(err, &validation) {
		return u.SendValidationError(c, validation)
	}

	var invalid models.ErrorValidation
	if errors.As(err, &invalid) {
		return u.SendFieldError(c, invalid.Field, invalid.Message)
	}

	var internal models.ErrorInternalServer
	if errors.As(err, &internal) {
		return u.SendInternalError(c, internal.Message, u.EmptyJsonMap())
	}

	switch u.GetStatusCode(err) {
	case http.StatusUnauthorized:
		return u.SendUnauthorizedError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusNotFound:
		return u.SendNotFoundError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusConflict:
		return u.SendError(c, err.Error(), u.EmptyJsonMap(), codeConflict, `conflict`)
	default:
		return u.SendInternalError(c, "internal server error", u.EmptyJsonMap())
	}
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeBadRequest, `badRequest`)
}

// SendValidationError ...
// Reports every failed tag, keyed by snake_case field name.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) error {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := Underscore(err.StructField())
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	c.JSON(codeValidation, map[string]interface{}{
		"code":         codeValidation,
		"code_type":    "validationError",
		"code_message": errorResponse,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendFieldError reports a single violated rule.
func (u *HTTPHelper) SendFieldError(c *gin.Context, field string, message string) error {
	c.JSON(codeValidation, map[string]interface{}{
		"code":         codeValidation,
		"code_type":    "validationError",
		"code_message": map[string][]string{field: {message}},
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeUnauthorized, `unAuthorized`)
}

// SendNotFoundError ...
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeNotFound, `notFound`)
}

func (u *HTTPHelper) SendTooManyRequests(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), codeTooManyRequest, `tooManyRequests`)
}

func (u *HTTPHelper) SendBadGateway(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeBadGateway, `badGateway`)
}

func (u *HTTPHelper) SendInternalError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeInternalError, `internalError`)
}

// SendSuccess ...
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`)

	return u.SendResponse(res)
}

// SendCreated ...
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeCreated, `created`)

	return u.SendResponse(res)
}

// SendResponse ...
// The envelope code doubles as the HTTP status.
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	res.C.JSON(res.Code, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// Underscore converts a Go field name to snake_case ("PublishedAt" -> "published_at").
func Underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
