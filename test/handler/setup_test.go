package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/veridoc-app/veridoc/internal/config"
	"github.com/veridoc-app/veridoc/internal/filestore"
	"github.com/veridoc-app/veridoc/internal/handler"
	"github.com/veridoc-app/veridoc/internal/middleware"
	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pkg/token"
	"github.com/veridoc-app/veridoc/internal/provenance"
	"github.com/veridoc-app/veridoc/internal/repo"
	"github.com/veridoc-app/veridoc/internal/service"
	"github.com/veridoc-app/veridoc/test/testutil"
)

var testJWTSecret = []byte("test-secret")

type testEnv struct {
	router     http.Handler
	users      *repo.UserRepo
	audits     *repo.AuditRepo
	stagingDir string
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	return setupRouterWithRateLimit(t, 15*time.Minute, 100)
}

func setupRouterWithRateLimit(t *testing.T, window time.Duration, max int) *testEnv {
	t.Helper()
	return setupRouterWithStaging(t, window, max, t.TempDir())
}

func setupRouterWithStaging(t *testing.T, window time.Duration, max int, stagingDir string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenTestDB(t)
	docRepo := repo.NewDocumentRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	shareRepo := repo.NewShareRepo(db)
	userRepo := repo.NewUserRepo(db)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	embedder := provenance.NewEmbedder("VeriDoc", "VeriDoc SAS", "verification@veridoc.example")

	documentService := service.NewDocumentService(docRepo, auditRepo, userRepo, store, embedder)
	shareService := service.NewShareService(docRepo, shareRepo, userRepo, auditRepo)

	deps := handler.RouterDeps{
		Documents:       handler.NewDocumentHandler(documentService, stagingDir),
		Shares:          handler.NewShareHandler(shareService),
		JWTSecret:       testJWTSecret,
		RateLimitWindow: window,
		RateLimitMax:    max,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &testEnv{router: engine, users: userRepo, audits: auditRepo, stagingDir: stagingDir}
}

func (env *testEnv) seedUser(t *testing.T, username, displayName string) int64 {
	t.Helper()
	user := &model.User{Username: username, DisplayName: displayName, Company: "VeriDoc SAS"}
	require.NoError(t, env.users.Create(context.Background(), user))
	return user.ID
}

func bearerFor(t *testing.T, userID, companyID int64) string {
	t.Helper()
	tok, err := token.Generate(userID, companyID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (env *testEnv) do(t *testing.T, method, path, auth string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	return resp
}

func multipartUpload(t *testing.T, filename, fieldContentType string, content []byte, options string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", fieldContentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if options != "" {
		require.NoError(t, writer.WriteField("options", options))
	}
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func (env *testEnv) uploadDocument(t *testing.T, auth, filename string, content []byte, options string) map[string]interface{} {
	t.Helper()
	body, contentType := multipartUpload(t, filename, "application/pdf", content, options)
	resp := env.do(t, http.MethodPost, "/api/v1/documents/upload", auth, body, contentType)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeJSON(t, resp)
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result
}
