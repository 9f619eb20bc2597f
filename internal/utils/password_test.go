package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// PasswordTestSuite 密码工具测试套件
type PasswordTestSuite struct {
	suite.Suite
}

// 测试哈希与验证
func (suite *PasswordTestSuite) TestHashAndVerify() {
	hash, err := HashPassword("s3cret-password")
	suite.NoError(err)
	suite.True(strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("s3cret-password", hash)
	suite.NoError(err)
	suite.True(ok)

	ok, err = VerifyPassword("wrong-password", hash)
	suite.NoError(err)
	suite.False(ok)
}

// 测试相同密码产生不同哈希（随机盐）
func (suite *PasswordTestSuite) TestHashUniqueness() {
	h1, err := HashPassword("same")
	suite.NoError(err)
	h2, err := HashPassword("same")
	suite.NoError(err)
	suite.NotEqual(h1, h2)
}

// 测试非法编码
func (suite *PasswordTestSuite) TestVerifyInvalidEncoding() {
	for _, bad := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$a$b", "$argon2id$bad"} {
		_, err := VerifyPassword("x", bad)
		suite.Error(err, "应拒绝 %q", bad)
	}
}

// 测试自定义配置
func (suite *PasswordTestSuite) TestCustomConfig() {
	cfg := &PasswordConfig{Time: 2, Memory: 32 * 1024, Threads: 2, KeyLen: 16}
	hash, err := HashPasswordWithConfig("custom", cfg)
	suite.NoError(err)

	ok, err := VerifyPassword("custom", hash)
	suite.NoError(err)
	suite.True(ok)
}

// TestPasswordTestSuite 运行测试套件
func TestPasswordTestSuite(t *testing.T) {
	suite.Run(t, new(PasswordTestSuite))
}
