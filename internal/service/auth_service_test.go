package service

import (
	"context"
	"testing"
	"time"

	"github.com/mightystreet/pixel-painter/internal/repository"
	"github.com/mightystreet/pixel-painter/internal/utils"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthServiceTestSuite 认证服务测试套件
type AuthServiceTestSuite struct {
	suite.Suite
	db   *gorm.DB
	auth AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	suite.auth = NewAuthService(suite.db, repository.NewUserRepository(suite.db), jwtManager, zap.NewNop())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// register 注册一个测试用户
func (suite *AuthServiceTestSuite) register(username, password string) *AuthResponse {
	resp, err := suite.auth.Register(context.Background(), &RegisterRequest{
		Username: username,
		Password: password,
	})
	suite.Require().NoError(err)
	return resp
}

// TestRegister 测试注册
func (suite *AuthServiceTestSuite) TestRegister() {
	resp := suite.register("alice", "password123")

	suite.NotNil(resp.User)
	suite.Equal("alice", resp.User.Username)
	suite.Equal("alice", resp.User.Nickname) // 默认昵称取用户名
	suite.NotEmpty(resp.AccessToken)
	suite.NotEmpty(resp.RefreshToken)
	suite.Equal("Bearer", resp.TokenType)

	// 密码已哈希存储
	suite.NotEqual("password123", resp.User.Password)
}

// TestRegister_Duplicate 测试重复用户名
func (suite *AuthServiceTestSuite) TestRegister_Duplicate() {
	suite.register("alice", "password123")

	_, err := suite.auth.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Password: "password456",
	})
	suite.ErrorIs(err, ErrUserExists)
}

// TestRegister_InvalidInput 测试非法注册输入
func (suite *AuthServiceTestSuite) TestRegister_InvalidInput() {
	ctx := context.Background()

	// 用户名太短
	_, err := suite.auth.Register(ctx, &RegisterRequest{Username: "ab", Password: "password123"})
	suite.Error(err)

	// 用户名带非法字符
	_, err = suite.auth.Register(ctx, &RegisterRequest{Username: "bad name!", Password: "password123"})
	suite.Error(err)

	// 密码太短
	_, err = suite.auth.Register(ctx, &RegisterRequest{Username: "alice", Password: "123"})
	suite.Error(err)

	// 两次密码不一致
	_, err = suite.auth.Register(ctx, &RegisterRequest{
		Username: "alice", Password: "password123", ConfirmPassword: "password456",
	})
	suite.Error(err)
}

// TestLogin 测试登录
func (suite *AuthServiceTestSuite) TestLogin() {
	suite.register("alice", "password123")

	resp, err := suite.auth.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "password123",
		IP:       "192.168.1.10",
	})
	suite.NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.NotNil(resp.User.LastLoginAt)
	suite.Equal("192.168.1.10", resp.User.LastLoginIP)
}

// TestLogin_WrongPassword 测试密码错误
func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.register("alice", "password123")

	_, err := suite.auth.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "wrong",
	})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

// TestLogin_UnknownUser 测试用户不存在
func (suite *AuthServiceTestSuite) TestLogin_UnknownUser() {
	_, err := suite.auth.Login(context.Background(), &LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

// TestValidateToken 测试令牌验证
func (suite *AuthServiceTestSuite) TestValidateToken() {
	resp := suite.register("alice", "password123")

	claims, err := suite.auth.ValidateToken(context.Background(), resp.AccessToken)
	suite.NoError(err)
	suite.Equal("alice", claims.Username)
	suite.Equal(resp.User.ID, claims.UserID)

	// 刷新令牌不能当访问令牌用
	_, err = suite.auth.ValidateToken(context.Background(), resp.RefreshToken)
	suite.ErrorIs(err, ErrInvalidToken)

	_, err = suite.auth.ValidateToken(context.Background(), "garbage")
	suite.ErrorIs(err, ErrInvalidToken)
}

// TestRefreshToken 测试令牌刷新
func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp := suite.register("alice", "password123")

	refreshed, err := suite.auth.RefreshToken(context.Background(), resp.RefreshToken)
	suite.NoError(err)
	suite.NotEmpty(refreshed.AccessToken)
	suite.Equal("alice", refreshed.User.Username)

	// 访问令牌不能用来刷新
	_, err = suite.auth.RefreshToken(context.Background(), resp.AccessToken)
	suite.ErrorIs(err, ErrInvalidToken)
}

// TestProfile 测试查询资料
func (suite *AuthServiceTestSuite) TestProfile() {
	resp := suite.register("alice", "password123")

	profile, err := suite.auth.Profile(context.Background(), resp.User.ID)
	suite.NoError(err)
	suite.Equal("alice", profile.Username)
	suite.Zero(profile.PlacementCount)

	_, err = suite.auth.Profile(context.Background(), 9999)
	suite.ErrorIs(err, ErrUserNotFound)
}

// TestAuthServiceTestSuite 运行测试套件
func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
