package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"contractors/internal/handlers"
	"contractors/internal/models"
	"contractors/internal/repositories"
	"contractors/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// envelope mirrors the uniform response wrapper for decoding in tests.
type envelope struct {
	IsSuccess    bool            `json:"isSuccess"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorCode    int             `json:"errorCode"`
}

// setupApp builds the full Fiber app over a fresh in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A named shared-cache database so every pooled connection sees the same data.
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contractor{}, &models.AdditionalData{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	contractorRepo := repositories.NewGORMContractorRepository(db)

	jwtOptions := services.JWTOptions{
		Secret:        jwtSecret,
		Issuer:        "contractors-api-test",
		Audience:      "contractors-api-test",
		ExpireMinutes: 60,
	}
	authService := services.NewAuthService(userRepo, jwtOptions)
	contractorService := services.NewContractorService(contractorRepo, userRepo, nil) // nil MQ client in tests
	reportService := services.NewReportService(userRepo, contractorRepo)

	app := fiber.New()
	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewContractorHandler(contractorService).RegisterRoutes(api)
	handlers.NewReportHandler(reportService).RegisterRoutes(api)

	return app, db
}

// doRequest performs one request against the app and decodes the envelope
// when the response carries JSON.
func doRequest(t *testing.T, app *fiber.App, method, target string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, target, err)
	}

	var result envelope
	if resp.StatusCode != http.StatusNoContent && resp.Header.Get("Content-Type") != "application/pdf" {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read response body: %v", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("failed to decode envelope from %q: %v", data, err)
			}
		}
	}
	return resp, result
}

// registerUser creates an account and returns its token and database id.
func registerUser(t *testing.T, app *fiber.App, db *gorm.DB, userName, email, password string) (string, uint) {
	t.Helper()

	resp, result := doRequest(t, app, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		UserName:     userName,
		EmailAddress: email,
		Password:     password,
	}, nil)
	if resp.StatusCode != http.StatusOK || !result.IsSuccess {
		t.Fatalf("registration failed: status %d, envelope %+v", resp.StatusCode, result)
	}

	var token string
	if err := json.Unmarshal(result.Value, &token); err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}

	var user models.User
	if err := db.First(&user, "email_address = ?", email).Error; err != nil {
		t.Fatalf("registered user not persisted: %v", err)
	}
	return token, user.ID
}

func createContractor(t *testing.T, app *fiber.App, req models.AddUpdateContractorRequest) uint {
	t.Helper()

	resp, result := doRequest(t, app, http.MethodPost, "/api/contractors/", req, nil)
	if resp.StatusCode != http.StatusOK || !result.IsSuccess {
		t.Fatalf("contractor creation failed: status %d, envelope %+v", resp.StatusCode, result)
	}
	var id uint
	if err := json.Unmarshal(result.Value, &id); err != nil {
		t.Fatalf("failed to decode contractor id: %v", err)
	}
	return id
}

func TestEndToEndScenario(t *testing.T) {
	app, db := setupApp(t)

	// Register and receive a token.
	token, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")
	assert.NotEmpty(t, token)

	// Create a contractor with one additional-data field.
	contractorID := createContractor(t, app, models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Phone", FieldType: "string", FieldValue: "555"},
		},
	})
	assert.NotZero(t, contractorID)

	// Read it back.
	resp, result := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/contractors/%d", contractorID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.IsSuccess)

	var contractor models.Contractor
	assert.NoError(t, json.Unmarshal(result.Value, &contractor))
	assert.Equal(t, "Acme", contractor.Name)
	assert.Len(t, contractor.AdditionalData, 1)
	assert.Equal(t, "Phone", contractor.AdditionalData[0].FieldName)
	assert.Equal(t, "string", contractor.AdditionalData[0].FieldType)
	assert.Equal(t, "555", contractor.AdditionalData[0].FieldValue)

	// Delete it.
	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/contractors/%d", contractorID), nil,
		map[string]string{"UserId": fmt.Sprint(userID)})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A subsequent read reports NotFound.
	resp, result = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/contractors/%d", contractorID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, http.StatusNotFound, result.ErrorCode)
}

func TestCreateContractorValidation(t *testing.T) {
	app, db := setupApp(t)
	_, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	// Duplicate field names differing only in case.
	resp, result := doRequest(t, app, http.MethodPost, "/api/contractors/", models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Phone", FieldType: "string", FieldValue: "555"},
			{FieldName: "phone", FieldType: "string", FieldValue: "556"},
		},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, result.ErrorMessage, "phone")

	// Type/value mismatch.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/contractors/", models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Age", FieldType: "int", FieldValue: "old"},
		},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Empty name.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/contractors/", models.AddUpdateContractorRequest{
		Name:   "",
		UserID: userID,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Nothing was persisted by the rejected requests.
	var contractorCount, dataCount int64
	db.Model(&models.Contractor{}).Count(&contractorCount)
	db.Model(&models.AdditionalData{}).Count(&dataCount)
	assert.Zero(t, contractorCount)
	assert.Zero(t, dataCount)
}

func TestCreateContractorUnknownUserPersistsNothing(t *testing.T) {
	app, db := setupApp(t)

	resp, result := doRequest(t, app, http.MethodPost, "/api/contractors/", models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: 4242,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Phone", FieldType: "string", FieldValue: "555"},
		},
	}, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.IsSuccess)

	var contractorCount, dataCount int64
	db.Model(&models.Contractor{}).Count(&contractorCount)
	db.Model(&models.AdditionalData{}).Count(&dataCount)
	assert.Zero(t, contractorCount, "no contractor row may survive a failed create")
	assert.Zero(t, dataCount, "no additional-data row may survive a failed create")
}

func TestListContractorsPagination(t *testing.T) {
	app, db := setupApp(t)
	_, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"}
	for _, name := range names {
		createContractor(t, app, models.AddUpdateContractorRequest{Name: name, UserID: userID})
	}

	userHeader := map[string]string{"userId": fmt.Sprint(userID)}

	decodePage := func(target string) models.PaginatedData {
		resp, result := doRequest(t, app, http.MethodGet, target, nil, userHeader)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var page models.PaginatedData
		assert.NoError(t, json.Unmarshal(result.Value, &page))
		return page
	}

	// 7 rows, pages of 3: 3 + 3 + 1.
	page := decodePage("/api/contractors/?page=1&count=3")
	assert.Len(t, page.Data, 3)
	assert.Equal(t, int64(7), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "Alpha", page.Data[0].Name)

	page = decodePage("/api/contractors/?page=3&count=3")
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "Golf", page.Data[0].Name)

	// Past the last page: empty but well-formed.
	page = decodePage("/api/contractors/?page=4&count=3")
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(7), page.TotalCount)

	// Descending order flips the first page.
	page = decodePage("/api/contractors/?page=1&count=3&orderByAsc=false")
	assert.Equal(t, "Golf", page.Data[0].Name)

	// Case-insensitive substring filter.
	page = decodePage("/api/contractors/?query=ALPH")
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "Alpha", page.Data[0].Name)
	assert.Equal(t, int64(1), page.TotalCount)

	// Another user sees nothing.
	otherHeader := map[string]string{"userId": fmt.Sprint(userID + 1)}
	resp, result := doRequest(t, app, http.MethodGet, "/api/contractors/", nil, otherHeader)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var otherPage models.PaginatedData
	assert.NoError(t, json.Unmarshal(result.Value, &otherPage))
	assert.Empty(t, otherPage.Data)
	assert.Zero(t, otherPage.TotalCount)
}

func TestUpdateContractorReplacesAdditionalData(t *testing.T) {
	app, db := setupApp(t)
	_, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	contractorID := createContractor(t, app, models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "A", FieldType: "string", FieldValue: "1"},
			{FieldName: "B", FieldType: "int", FieldValue: "2"},
		},
	})

	userHeader := map[string]string{"UserId": fmt.Sprint(userID)}

	// A non-owner cannot update.
	resp, _ := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/contractors/%d", contractorID),
		models.AddUpdateContractorRequest{Name: "Evil"}, map[string]string{"UserId": fmt.Sprint(userID + 1)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The owner replaces the whole field set.
	resp, result := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/contractors/%d", contractorID),
		models.AddUpdateContractorRequest{
			Name:        "Acme Ltd",
			Description: "Rebranded",
			AdditionalData: []models.AdditionalDataEntry{
				{FieldName: "C", FieldType: "bool", FieldValue: "true"},
			},
		}, userHeader)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.IsSuccess)

	resp, result = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/contractors/%d", contractorID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var contractor models.Contractor
	assert.NoError(t, json.Unmarshal(result.Value, &contractor))
	assert.Equal(t, "Acme Ltd", contractor.Name)
	assert.Equal(t, "Rebranded", contractor.Description)
	assert.Len(t, contractor.AdditionalData, 1)
	assert.Equal(t, "C", contractor.AdditionalData[0].FieldName)

	// The old rows are gone from storage, not just from the response.
	var dataCount int64
	db.Model(&models.AdditionalData{}).Where("contractor_id = ?", contractorID).Count(&dataCount)
	assert.Equal(t, int64(1), dataCount)
}

func TestDeleteContractorLeavesNoOrphans(t *testing.T) {
	app, db := setupApp(t)
	_, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	contractorID := createContractor(t, app, models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "A", FieldType: "string", FieldValue: "1"},
			{FieldName: "B", FieldType: "string", FieldValue: "2"},
		},
	})

	// A non-owner cannot delete.
	resp, _ := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/contractors/%d", contractorID), nil,
		map[string]string{"UserId": fmt.Sprint(userID + 1)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/contractors/%d", contractorID), nil,
		map[string]string{"UserId": fmt.Sprint(userID)})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var dataCount int64
	db.Model(&models.AdditionalData{}).Where("contractor_id = ?", contractorID).Count(&dataCount)
	assert.Zero(t, dataCount, "delete must cascade to additional data")
}

func TestLoginFlow(t *testing.T) {
	app, db := setupApp(t)
	registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	resp, result := doRequest(t, app, http.MethodPost, "/api/auth/login",
		models.LoginRequest{EmailAddress: "bob@example.com", Password: "pw123"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.IsSuccess)

	resp, result = doRequest(t, app, http.MethodPost, "/api/auth/login",
		models.LoginRequest{EmailAddress: "bob@example.com", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.IsSuccess)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/auth/login",
		models.LoginRequest{EmailAddress: "", Password: "pw123"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	app, db := setupApp(t)

	// Malformed email.
	resp, _ := doRequest(t, app, http.MethodPost, "/api/auth/register",
		models.RegisterRequest{UserName: "bob", EmailAddress: "bob@example.com.", Password: "pw123"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Duplicate email.
	registerUser(t, app, db, "bob", "bob@example.com", "pw123")
	resp, result := doRequest(t, app, http.MethodPost, "/api/auth/register",
		models.RegisterRequest{UserName: "robert", EmailAddress: "bob@example.com", Password: "pw456"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, result.ErrorMessage, "already in use")
}

func TestRemoveUserEndpoint(t *testing.T) {
	app, db := setupApp(t)
	token, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	// The user's contractors go away with the account.
	createContractor(t, app, models.AddUpdateContractorRequest{
		Name:   "Acme",
		UserID: userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Phone", FieldType: "string", FieldValue: "555"},
		},
	})

	// No token: unauthorized.
	resp, _ := doRequest(t, app, http.MethodDelete, "/api/auth/remove", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Bearer token removes the account.
	resp, _ = doRequest(t, app, http.MethodDelete, "/api/auth/remove", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var userCount, contractorCount, dataCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Contractor{}).Count(&contractorCount)
	db.Model(&models.AdditionalData{}).Count(&dataCount)
	assert.Zero(t, userCount)
	assert.Zero(t, contractorCount)
	assert.Zero(t, dataCount)

	// Login no longer works.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/auth/login",
		models.LoginRequest{EmailAddress: "bob@example.com", Password: "pw123"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveUserLegacyJWTHeader(t *testing.T) {
	app, db := setupApp(t)
	token, _ := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/auth/remove", nil,
		map[string]string{"jwt": token})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestReportEndpoint(t *testing.T) {
	app, db := setupApp(t)
	_, userID := registerUser(t, app, db, "bob", "bob@example.com", "pw123")

	createContractor(t, app, models.AddUpdateContractorRequest{
		Name:        "Acme",
		Description: "Anvils",
		UserID:      userID,
		AdditionalData: []models.AdditionalDataEntry{
			{FieldName: "Phone", FieldType: "string", FieldValue: "555"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("userId", fmt.Sprint(userID))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("report request failed: %v", err)
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	pdf, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.True(t, len(pdf) > 4 && string(pdf[:4]) == "%PDF")

	// Unknown user cannot get a report.
	resp, result := doRequest(t, app, http.MethodGet, "/api/report", nil,
		map[string]string{"userId": "4242"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.IsSuccess)
}

func TestGetContractorBadID(t *testing.T) {
	app, _ := setupApp(t)

	resp, result := doRequest(t, app, http.MethodGet, "/api/contractors/-1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, result.IsSuccess)
}
