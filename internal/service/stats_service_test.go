package service

import (
	"context"
	"testing"

	"github.com/mightystreet/pixel-painter/internal/repository"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixedOnline 固定在线人数桩
type fixedOnline struct{ n int }

func (f *fixedOnline) OnlineCount() int { return f.n }

// StatsServiceTestSuite 画布统计服务测试套件
type StatsServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	stats StatsService
}

func (suite *StatsServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.stats = NewStatsService(
		repository.NewPlacementRepository(suite.db),
		repository.NewUserRepository(suite.db),
		&fixedOnline{n: 3},
		zap.NewNop(),
	)
}

func (suite *StatsServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// TestLeaderboard 测试排行榜
func (suite *StatsServiceTestSuite) TestLeaderboard() {
	ctx := context.Background()
	repository.SeedTestUsers(suite.T(), suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	for i := 0; i < 3; i++ {
		suite.NoError(userRepo.IncrementPlacementCount(ctx, "bob"))
	}
	suite.NoError(userRepo.IncrementPlacementCount(ctx, "alice"))

	entries, err := suite.stats.Leaderboard(ctx, 10)
	suite.NoError(err)
	suite.Len(entries, 2)
	suite.Equal(1, entries[0].Rank)
	suite.Equal("bob", entries[0].Username)
	suite.Equal(int64(3), entries[0].PlacementCount)
	suite.Equal(2, entries[1].Rank)
	suite.Equal("alice", entries[1].Username)
}

// TestRecentActivity 测试活动流
func (suite *StatsServiceTestSuite) TestRecentActivity() {
	ctx := context.Background()
	placementRepo := repository.NewPlacementRepository(suite.db)

	keys := []string{"0,0", "1,0", "2,0"}
	for i, key := range keys {
		p := repository.CreateTestPlacement(key, int64(i), 0, "#abcdef", "alice")
		suite.NoError(placementRepo.Append(ctx, p))
	}

	entries, err := suite.stats.RecentActivity(ctx, 2)
	suite.NoError(err)
	suite.Len(entries, 2)
	suite.Equal("#abcdef", entries[0].Color)
}

// TestOverview 测试总览
func (suite *StatsServiceTestSuite) TestOverview() {
	ctx := context.Background()
	placementRepo := repository.NewPlacementRepository(suite.db)
	suite.NoError(placementRepo.Append(ctx, repository.CreateTestPlacement("5,5", 5, 5, "#123456", "carol")))

	overview, err := suite.stats.Overview(ctx)
	suite.NoError(err)
	suite.Equal(int64(1), overview.TotalPlacements)
	suite.Equal(3, overview.OnlineUsers)
}

// TestStatsServiceTestSuite 运行测试套件
func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}
