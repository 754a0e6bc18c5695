package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	collectionport "backofficeWs/internal/modules/collection/application/port"
	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	formsusecase "backofficeWs/internal/modules/forms/application/usecase"
	formsdomain "backofficeWs/internal/modules/forms/domain"
	"backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
	"backofficeWs/internal/shared/auth"
	"backofficeWs/internal/shared/normalization"
)

const (
	contextToken  = "staffToken"
	contextClaims = "staffClaims"

	bulkUploadPath  = "/Product/bulk-upload"
	bulkUploadField = "file"
)

// AdminHandlers is the REST facade over the collection views.
type AdminHandlers struct {
	Fetcher   collectionport.CollectionFetcher
	Sender    collectionport.MutationSender
	Uploader  collectionport.Uploader
	Submitter *formsusecase.Submitter
	// OnMutated runs after every successful mutation, form or upload.
	OnMutated func(collection, recordID string)

	// Views and Hub feed the health report; both may be nil.
	Views *collectionusecase.ViewRegistry
	Hub   *infrastructure.Hub
}

// RequireStaff validates the staff token of every request and stores it in the context.
func RequireStaff(validator auth.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.ResolveToken("", c.Request(), "token")
			if token == "" {
				return respondError(c, auth.ErrMissingToken)
			}
			claims, err := validator.Validate(token)
			if err != nil {
				slog.Warn("admin http: token rejected", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
				return respondError(c, err)
			}
			c.Set(contextToken, token)
			c.Set(contextClaims, claims)
			return next(c)
		}
	}
}

func staffToken(c echo.Context) string {
	token, _ := c.Get(contextToken).(string)
	return token
}

func lookupDefinition(raw string) (collectiondomain.Definition, error) {
	def, ok := collectiondomain.Lookup(normalizeCollection(raw))
	if !ok {
		return collectiondomain.Definition{}, collectiondomain.ErrUnknownCollection
	}
	return def, nil
}

// List handles GET /api/admin/:collection with paging, sort and filters as query values.
func (h *AdminHandlers) List(c echo.Context) error {
	def, err := lookupDefinition(c.Param("collection"))
	if err != nil {
		return respondError(c, err)
	}
	query, err := collectionusecase.QueryFromValues(def, c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	page, err := collectionusecase.FetchPage(c.Request().Context(), h.Fetcher, staffToken(c), def, query)
	if err != nil {
		info := errorMapper.Map(err)
		return echo.NewHTTPError(info.Status, collectiondomain.DescribeListFailure(err, def.Label))
	}
	return c.JSON(http.StatusOK, page)
}

// Mutate handles POST /api/admin/:collection/:id/:action and, for actions without a
// record such as create, POST /api/admin/:collection/:action. The JSON body is the payload.
func (h *AdminHandlers) Mutate(c echo.Context) error {
	def, err := lookupDefinition(c.Param("collection"))
	if err != nil {
		return respondError(c, err)
	}
	payload := map[string]any{}
	if err := decodeBody(c, &payload); err != nil {
		return respondError(c, err)
	}
	prepared, err := collectionusecase.PrepareMutation(def, collectionusecase.Mutation{
		Action:   c.Param("action"),
		RecordID: c.Param("id"),
		Payload:  payload,
	})
	if err != nil {
		return respondError(c, err)
	}
	response, err := collectionusecase.SendMutation(c.Request().Context(), h.Sender, staffToken(c), prepared)
	if err != nil {
		slog.Warn("admin http: mutation failed", slog.String("collection", def.Name), slog.String("action", prepared.Spec.Action), slog.String("recordId", prepared.RecordID), slog.Any("error", err))
		return respondError(c, err)
	}
	h.mutated(def.Name, prepared.RecordID)
	slog.Info("admin http: mutation applied", slog.String("collection", def.Name), slog.String("action", prepared.Spec.Action), slog.String("recordId", prepared.RecordID))
	return c.JSON(http.StatusOK, prepared.Outcome(response))
}

// SubmitForm handles POST /api/admin/forms/:form.
func (h *AdminHandlers) SubmitForm(c echo.Context) error {
	name := strings.ToLower(strings.TrimSpace(c.Param("form")))
	form, err := formsdomain.New(name)
	if err != nil {
		return respondError(c, err)
	}
	if err := decodeBody(c, form); err != nil {
		return respondError(c, err)
	}
	result, err := h.Submitter.Submit(c.Request().Context(), staffToken(c), name, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// BulkUpload handles POST /api/admin/products/bulk-upload by streaming the "file" part upstream.
func (h *AdminHandlers) BulkUpload(c echo.Context) error {
	header, err := c.FormFile(bulkUploadField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Please select a file to upload")
	}
	file, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read upload")
	}
	defer file.Close()

	response, err := h.Uploader.Upload(c.Request().Context(), staffToken(c), collectionport.FileUpload{
		Path:     bulkUploadPath,
		Field:    bulkUploadField,
		FileName: header.Filename,
		Content:  file,
	})
	if err == nil {
		if rejected := collectiondomain.RejectedByBody(0, response); rejected != nil {
			err = rejected
		}
	}
	if err != nil {
		slog.Warn("admin http: bulk upload failed", slog.String("file", header.Filename), slog.Any("error", err))
		return respondError(c, collectiondomain.NewMutationError("products", "bulk_upload", "", "Bulk upload failed", err))
	}
	h.mutated("products", "")
	slog.Info("admin http: bulk upload forwarded", slog.String("file", header.Filename), slog.Int64("size", header.Size))
	return c.JSON(http.StatusOK, map[string]any{"success": true, "response": response})
}

// Health handles GET /healthz.
func (h *AdminHandlers) Health(c echo.Context) error {
	collections := make(map[string]any, len(normalization.KnownCollections()))
	for _, name := range normalization.KnownCollections() {
		entry := map[string]int{"openViews": 0, "subscribers": 0}
		if h.Views != nil {
			entry["openViews"] = h.Views.Count(name)
		}
		if h.Hub != nil {
			entry["subscribers"] = h.Hub.Subscribers(domain.StateTopic(name))
		}
		collections[name] = entry
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"collections": collections,
		"forms":       formsdomain.Names(),
	})
}

// decodeBody reads a JSON body; an empty body leaves dst untouched. Path parameters are
// never merged in.
func decodeBody(c echo.Context, dst any) error {
	if err := c.Echo().JSONSerializer.Deserialize(c, dst); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidPayload
	}
	return nil
}

func (h *AdminHandlers) mutated(collection, recordID string) {
	if h.OnMutated != nil {
		h.OnMutated(collection, recordID)
	}
}
