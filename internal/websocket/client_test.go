package websocket

import (
	"testing"

	"github.com/mightystreet/pixel-painter/internal/grid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// ClientTestSuite 客户端消息分发测试套件
type ClientTestSuite struct {
	suite.Suite
	placer   *fakePlacer
	presence *fakePresence
	client   *Client
}

func (suite *ClientTestSuite) SetupTest() {
	suite.placer = &fakePlacer{accept: true}
	suite.presence = &fakePresence{}

	hub := NewHub(grid.New(), suite.presence, zap.NewNop())
	hub.SetPlacer(suite.placer)
	suite.client = &Client{
		ID:   "test-client",
		Hub:  hub,
		Send: make(chan []byte, 16),
	}
}

// TestHandleMessage_ColorCell 测试落子请求分发
func (suite *ClientTestSuite) TestHandleMessage_ColorCell() {
	suite.client.handleMessage([]byte(`{"type":"colorCell","key":"3,-7","color":"#ff0000","username":"alice"}`))

	requests := suite.placer.all()
	suite.Len(requests, 1)
	suite.Equal(grid.Key{X: 3, Y: -7}, requests[0].Key)
	suite.Equal("#ff0000", requests[0].Color)
	suite.Equal("alice", requests[0].Username)
}

// TestHandleMessage_ColorCellSessionIdentity 测试落子请求回退到会话身份
func (suite *ClientTestSuite) TestHandleMessage_ColorCellSessionIdentity() {
	suite.client.handleMessage([]byte(`{"type":"authenticate","username":"bob"}`))
	suite.client.handleMessage([]byte(`{"type":"colorCell","key":"1,1","color":"#00ff00"}`))

	requests := suite.placer.all()
	suite.Len(requests, 1)
	suite.Equal("bob", requests[0].Username)
}

// TestHandleMessage_MalformedKeepsConnection 测试畸形消息不中断会话
func (suite *ClientTestSuite) TestHandleMessage_MalformedKeepsConnection() {
	malformed := []string{
		`not json at all`,
		`{"key":"0,0","color":"#fff"}`,               // 缺type
		`{"type":"colorCell","color":"#fff"}`,        // 缺key
		`{"type":"colorCell","key":"zzz","color":"#fff","username":"alice"}`, // 坐标非法
		`{"type":"wat"}`,                             // 未知类型
	}
	for _, frame := range malformed {
		suite.client.handleMessage([]byte(frame))
	}
	suite.Empty(suite.placer.all())

	// 缺color的落子请求会进入仲裁，由仲裁静默丢弃
	suite.client.handleMessage([]byte(`{"type":"colorCell","key":"0,0","username":"alice"}`))

	// 同一会话的后续合法请求照常处理
	suite.client.handleMessage([]byte(`{"type":"colorCell","key":"2,2","color":"#123456","username":"alice"}`))

	requests := suite.placer.all()
	suite.Len(requests, 2)
	suite.Equal("2,2", requests[1].Key.String())
	suite.Equal("#123456", requests[1].Color)
}

// TestHandleMessage_Authenticate 测试身份绑定与换绑
func (suite *ClientTestSuite) TestHandleMessage_Authenticate() {
	suite.client.handleMessage([]byte(`{"type":"authenticate","username":"alice"}`))
	suite.Equal("alice", suite.client.Username)

	suite.client.handleMessage([]byte(`{"type":"authenticate","username":"bob"}`))
	suite.Equal("bob", suite.client.Username)

	suite.presence.mu.Lock()
	defer suite.presence.mu.Unlock()
	suite.Equal([][2]string{{"", "alice"}, {"alice", "bob"}}, suite.presence.rebinds)
}

// TestHandleMessage_AuthenticateEmpty 测试缺用户名的认证被丢弃
func (suite *ClientTestSuite) TestHandleMessage_AuthenticateEmpty() {
	suite.client.handleMessage([]byte(`{"type":"authenticate"}`))
	suite.Empty(suite.client.Username)

	suite.presence.mu.Lock()
	defer suite.presence.mu.Unlock()
	suite.Empty(suite.presence.rebinds)
}

// TestClientTestSuite 运行测试套件
func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
