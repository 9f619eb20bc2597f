package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// JWTTestSuite JWT工具测试套件
type JWTTestSuite struct {
	suite.Suite
	manager *JWTManager
}

func (suite *JWTTestSuite) SetupTest() {
	suite.manager = NewJWTManager(
		"test-secret-key",
		1*time.Hour,    // access token expiry
		7*24*time.Hour, // refresh token expiry
	)
}

// 测试生成访问令牌
func (suite *JWTTestSuite) TestGenerateAccessToken() {
	token, err := suite.manager.GenerateAccessToken(123, "testuser")
	suite.NoError(err)
	suite.NotEmpty(token)
}

// 测试验证令牌
func (suite *JWTTestSuite) TestValidateToken() {
	token, _ := suite.manager.GenerateAccessToken(789, "validuser")

	claims, err := suite.manager.ValidateToken(token)
	suite.NoError(err)
	suite.NotNil(claims)
	suite.Equal(uint(789), claims.UserID)
	suite.Equal("validuser", claims.Username)
	suite.Equal("access", claims.TokenType)
	suite.Equal("pixel-painter", claims.Issuer)
}

// 测试验证无效令牌
func (suite *JWTTestSuite) TestValidateInvalidToken() {
	_, err := suite.manager.ValidateToken("not-a-token")
	suite.Error(err)

	// 错误密钥签发的令牌
	other := NewJWTManager("other-secret", time.Hour, time.Hour)
	token, _ := other.GenerateAccessToken(1, "alice")
	_, err = suite.manager.ValidateToken(token)
	suite.Error(err)
}

// 测试过期令牌
func (suite *JWTTestSuite) TestValidateExpiredToken() {
	expired := NewJWTManager("test-secret-key", -time.Hour, time.Hour)
	token, _ := expired.GenerateAccessToken(1, "alice")

	_, err := suite.manager.ValidateToken(token)
	suite.Error(err)
	suite.ErrorIs(err, ErrExpiredToken)
}

// 测试刷新访问令牌
func (suite *JWTTestSuite) TestRefreshAccessToken() {
	refresh, err := suite.manager.GenerateRefreshToken(42, "bob")
	suite.NoError(err)

	access, err := suite.manager.RefreshAccessToken(refresh)
	suite.NoError(err)

	claims, err := suite.manager.ValidateToken(access)
	suite.NoError(err)
	suite.Equal(uint(42), claims.UserID)
	suite.Equal("bob", claims.Username)
	suite.Equal("access", claims.TokenType)
}

// 测试访问令牌不能当刷新令牌用
func (suite *JWTTestSuite) TestRefreshWithAccessToken() {
	access, _ := suite.manager.GenerateAccessToken(42, "bob")
	_, err := suite.manager.RefreshAccessToken(access)
	suite.Error(err)
}

// TestJWTTestSuite 运行测试套件
func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
