package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mightystreet/pixel-painter/internal/grid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// fakePlacer 仲裁桩
type fakePlacer struct {
	mu       sync.Mutex
	requests []grid.PlacementRequest
	accept   bool
}

func (p *fakePlacer) Place(ctx context.Context, req grid.PlacementRequest) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.accept
}

func (p *fakePlacer) all() []grid.PlacementRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]grid.PlacementRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// fakePresence 在线状态桩
type fakePresence struct {
	mu       sync.Mutex
	rebinds  [][2]string
	offlines []string
}

func (p *fakePresence) Rebind(oldUsername, newUsername string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rebinds = append(p.rebinds, [2]string{oldUsername, newUsername})
}

func (p *fakePresence) Offline(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offlines = append(p.offlines, username)
}

func (p *fakePresence) OnlineCount() int { return 0 }

// HubTestSuite Hub测试套件
type HubTestSuite struct {
	suite.Suite
	grid     *grid.Grid
	placer   *fakePlacer
	presence *fakePresence
	hub      *Hub
	cancel   context.CancelFunc
}

func (suite *HubTestSuite) SetupTest() {
	suite.grid = grid.New()
	suite.placer = &fakePlacer{accept: true}
	suite.presence = &fakePresence{}
	suite.hub = NewHub(suite.grid, suite.presence, zap.NewNop())
	suite.hub.SetPlacer(suite.placer)

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	go suite.hub.Run(ctx)
}

func (suite *HubTestSuite) TearDownTest() {
	suite.cancel()
}

// newTestClient 创建不挂真实连接的测试会话
func (suite *HubTestSuite) newTestClient() *Client {
	return &Client{
		ID:   "test-" + time.Now().Format("150405.000000000"),
		Hub:  suite.hub,
		Send: make(chan []byte, suite.hub.sendBufferSize),
	}
}

// recv 从发送队列取一帧
func (suite *HubTestSuite) recv(c *Client) []byte {
	select {
	case data := <-c.Send:
		return data
	case <-time.After(2 * time.Second):
		suite.FailNow("等待下行帧超时")
		return nil
	}
}

// waitClients 等待Hub连接数达到期望值
func (suite *HubTestSuite) waitClients(want int) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if suite.hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	suite.FailNowf("等待超时", "期望 %d 个连接，实际 %d 个", want, suite.hub.ClientCount())
}

// TestRegister_InitSnapshot 测试注册时下发全量快照
func (suite *HubTestSuite) TestRegister_InitSnapshot() {
	suite.grid.InsertIfAbsent(grid.Key{X: 5, Y: 5}, grid.Cell{Color: "#123456", Owner: "carol"})
	suite.grid.InsertIfAbsent(grid.Key{X: -1, Y: 0}, grid.Cell{Color: "#abcdef"})

	client := suite.newTestClient()
	suite.hub.Register(client)

	var msg InitMessage
	suite.NoError(json.Unmarshal(suite.recv(client), &msg))
	suite.Equal(MessageTypeInit, msg.Type)
	suite.Len(msg.Grid, 2)
	suite.Equal("carol", msg.Grid["5,5"].Username)
	suite.Equal("#123456", msg.Grid["5,5"].Color)
	suite.Equal("#abcdef", msg.Grid["-1,0"].Color)
}

// TestRegister_EmptySnapshot 测试空网格的快照
func (suite *HubTestSuite) TestRegister_EmptySnapshot() {
	client := suite.newTestClient()
	suite.hub.Register(client)

	var msg InitMessage
	suite.NoError(json.Unmarshal(suite.recv(client), &msg))
	suite.Equal(MessageTypeInit, msg.Type)
	suite.Empty(msg.Grid)
}

// TestBroadcast_Fanout 测试广播覆盖所有在线会话
func (suite *HubTestSuite) TestBroadcast_Fanout() {
	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = suite.newTestClient()
		clients[i].ID = clients[i].ID + "-" + string(rune('a'+i))
		suite.hub.Register(clients[i])
	}
	suite.waitClients(5)

	// 丢掉各自的init帧
	for _, c := range clients {
		suite.recv(c)
	}

	suite.hub.BroadcastPlacement("0,0", "#ff0000", "alice")

	for _, c := range clients {
		var msg CellUpdateMessage
		suite.NoError(json.Unmarshal(suite.recv(c), &msg))
		suite.Equal(MessageTypeCellUpdate, msg.Type)
		suite.Equal("0,0", msg.Key)
		suite.Equal("#ff0000", msg.Color)
		suite.Equal("alice", msg.Username)
	}
}

// TestBroadcast_Order 测试单个会话按接受顺序收到广播
func (suite *HubTestSuite) TestBroadcast_Order() {
	client := suite.newTestClient()
	suite.hub.Register(client)
	suite.waitClients(1)
	suite.recv(client) // init

	keys := []string{"1,0", "2,0", "3,0"}
	for _, key := range keys {
		suite.hub.BroadcastPlacement(key, "#111111", "alice")
	}

	for _, want := range keys {
		var msg CellUpdateMessage
		suite.NoError(json.Unmarshal(suite.recv(client), &msg))
		suite.Equal(want, msg.Key)
	}
}

// TestUnregister 测试注销关闭发送队列并下线
func (suite *HubTestSuite) TestUnregister() {
	client := suite.newTestClient()
	client.Username = "alice"
	suite.hub.Register(client)
	suite.waitClients(1)

	suite.hub.Unregister(client)
	suite.waitClients(0)

	suite.presence.mu.Lock()
	offlines := append([]string(nil), suite.presence.offlines...)
	suite.presence.mu.Unlock()
	suite.Equal([]string{"alice"}, offlines)

	// 发送队列已被关闭
	suite.recv(client) // init帧仍可读出
	_, open := <-client.Send
	suite.False(open)
}

// TestUnregister_Unbound 测试未认证会话断开不触发下线
func (suite *HubTestSuite) TestUnregister_Unbound() {
	client := suite.newTestClient()
	suite.hub.Register(client)
	suite.waitClients(1)

	suite.hub.Unregister(client)
	suite.waitClients(0)

	suite.presence.mu.Lock()
	defer suite.presence.mu.Unlock()
	suite.Empty(suite.presence.offlines)
}

// TestHubTestSuite 运行测试套件
func TestHubTestSuite(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}
