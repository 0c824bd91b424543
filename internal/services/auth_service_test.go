package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskflow/internal/apperrors"
	"taskflow/internal/models"
	"taskflow/internal/repository"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	suite.service = NewAuthService(repository.NewUserRepository(suite.db), "test-secret", time.Hour)
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) TestRegisterNormalizesEmail() {
	user, err := suite.service.Register(RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
		Name:     "Alice",
	})
	suite.Require().NoError(err)

	suite.Equal("alice@example.com", user.Email)
	suite.NotEmpty(user.ID)
	suite.NotEqual("password123", user.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmailCaseInsensitive() {
	_, err := suite.service.Register(RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	suite.Require().NoError(err)

	_, err = suite.service.Register(RegisterInput{
		Email:    "ALICE@example.com",
		Password: "password456",
		Name:     "Alice Again",
	})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestRegisterShortPassword() {
	_, err := suite.service.Register(RegisterInput{
		Email:    "alice@example.com",
		Password: "short",
		Name:     "Alice",
	})

	var validationErr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	suite.Equal("password", validationErr.Field)
}

func (suite *AuthServiceTestSuite) TestLoginAndTokenRoundTrip() {
	user, err := suite.service.Register(RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	suite.Require().NoError(err)

	loggedIn, err := suite.service.Login(LoginInput{
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)
	suite.Equal(user.ID, loggedIn.ID)

	token, err := suite.service.GenerateToken(loggedIn)
	suite.Require().NoError(err)

	userID, err := suite.service.ValidateToken(token)
	suite.Require().NoError(err)
	suite.Equal(user.ID, userID)
}

// Unknown email and wrong password must be indistinguishable.
func (suite *AuthServiceTestSuite) TestLoginFailuresAreGeneric() {
	_, err := suite.service.Register(RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	suite.Require().NoError(err)

	_, errUnknown := suite.service.Login(LoginInput{Email: "nobody@example.com", Password: "password123"})
	_, errWrongPass := suite.service.Login(LoginInput{Email: "alice@example.com", Password: "wrongpassword"})

	suite.ErrorIs(errUnknown, ErrInvalidCredentials)
	suite.ErrorIs(errWrongPass, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestValidateTokenRejectsGarbage() {
	_, err := suite.service.ValidateToken("not.a.token")
	suite.ErrorIs(err, ErrInvalidToken)

	other := NewAuthService(nil, "other-secret", time.Hour)
	token, err := other.GenerateToken(&models.User{ID: "u1"})
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(token)
	suite.ErrorIs(err, ErrInvalidToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
