package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskflow/internal/constants"
	"taskflow/internal/logger"
	"taskflow/internal/models"
	"taskflow/internal/repository"
	"taskflow/internal/services"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authHandler *AuthHandler
	userHandler *UserHandler
	authService *services.AuthService
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	suite.Require().NoError(logger.Init(true))

	userRepo := repository.NewUserRepository(suite.db)
	suite.authService = services.NewAuthService(userRepo, "test-secret", time.Hour)
	suite.authHandler = NewAuthHandler(suite.authService)
	suite.userHandler = NewUserHandler(services.NewUserService(userRepo))

	gin.SetMode(gin.TestMode)
}

func (suite *AuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthHandlerTestSuite) createJSONContext(method, url string, payload any, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func (suite *AuthHandlerTestSuite) register(email, password, name string) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := suite.createJSONContext("POST", "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, "")
	suite.authHandler.Register(c)
	return c, w
}

func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	_, w := suite.register("alice@example.com", "password123", "Alice")

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(true, response["success"])

	data := response["data"].(map[string]any)
	suite.NotEmpty(data["token"])

	user := data["user"].(map[string]any)
	suite.Equal("alice@example.com", user["email"])
	suite.Equal("Alice", user["name"])
	suite.NotContains(w.Body.String(), "password")
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateEmail() {
	_, w := suite.register("alice@example.com", "password123", "Alice")
	suite.Equal(http.StatusCreated, w.Code)

	_, w = suite.register("ALICE@example.com", "password456", "Alice Again")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestRegister_MissingFields() {
	c, w := suite.createJSONContext("POST", "/api/auth/register", map[string]string{
		"email": "alice@example.com",
	}, "")
	suite.authHandler.Register(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	suite.register("alice@example.com", "password123", "Alice")

	c, w := suite.createJSONContext("POST", "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	suite.authHandler.Login(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	token := response["data"].(map[string]any)["token"].(string)

	userID, err := suite.authService.ValidateToken(token)
	suite.NoError(err)
	suite.NotEmpty(userID)
}

func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.register("alice@example.com", "password123", "Alice")

	c, w := suite.createJSONContext("POST", "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, "")
	suite.authHandler.Login(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthHandlerTestSuite) TestGetCurrentUser() {
	suite.register("alice@example.com", "password123", "Alice")

	var user models.User
	suite.Require().NoError(suite.db.Where("email = ?", "alice@example.com").First(&user).Error)

	c, w := suite.createJSONContext("GET", "/api/auth/me", nil, user.ID)
	suite.authHandler.GetCurrentUser(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("alice@example.com", response["data"].(map[string]any)["email"])
}

func (suite *AuthHandlerTestSuite) TestListUsers_HidesPasswordHashes() {
	suite.register("alice@example.com", "password123", "Alice")
	suite.register("bob@example.com", "password123", "Bob")

	var alice models.User
	suite.Require().NoError(suite.db.Where("email = ?", "alice@example.com").First(&alice).Error)

	c, w := suite.createJSONContext("GET", "/api/users", nil, alice.ID)
	suite.userHandler.ListUsers(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	users := response["data"].([]any)
	suite.Len(users, 2)
	suite.False(strings.Contains(w.Body.String(), "password"))
}

func (suite *AuthHandlerTestSuite) TestUpdateProfile() {
	suite.register("alice@example.com", "password123", "Alice")

	var alice models.User
	suite.Require().NoError(suite.db.Where("email = ?", "alice@example.com").First(&alice).Error)

	newName := "Alice Renamed"
	c, w := suite.createJSONContext("PUT", "/api/users/me", map[string]any{"name": newName}, alice.ID)
	suite.userHandler.UpdateProfile(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]any)
	suite.Equal(newName, data["name"])
	suite.Equal("alice@example.com", data["email"])
}

func (suite *AuthHandlerTestSuite) TestDeleteAccount_CascadesTasks() {
	suite.register("alice@example.com", "password123", "Alice")
	suite.register("bob@example.com", "password123", "Bob")

	var alice, bob models.User
	suite.Require().NoError(suite.db.Where("email = ?", "alice@example.com").First(&alice).Error)
	suite.Require().NoError(suite.db.Where("email = ?", "bob@example.com").First(&bob).Error)

	owned := &models.Task{Title: "owned", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, CreatorID: alice.ID}
	suite.Require().NoError(suite.db.Create(owned).Error)
	assigned := &models.Task{Title: "assigned", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, CreatorID: bob.ID, AssigneeID: &alice.ID}
	suite.Require().NoError(suite.db.Create(assigned).Error)

	c, w := suite.createJSONContext("DELETE", "/api/users/me", nil, alice.ID)
	suite.userHandler.DeleteAccount(c)
	// Handlers are invoked directly, so flush gin's lazy status header the
	// way the engine would after the handler chain.
	c.Writer.WriteHeaderNow()

	suite.Equal(http.StatusNoContent, w.Code)

	var ownedCount int64
	suite.db.Model(&models.Task{}).Where("creator_id = ?", alice.ID).Count(&ownedCount)
	suite.Equal(int64(0), ownedCount)

	var survivor models.Task
	suite.Require().NoError(suite.db.First(&survivor, "id = ?", assigned.ID).Error)
	suite.Nil(survivor.AssigneeID)
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
