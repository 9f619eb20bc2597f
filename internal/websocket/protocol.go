package websocket

import (
	"encoding/json"

	"github.com/mightystreet/pixel-painter/internal/errors"
)

// MessageType 消息类型
const (
	// 服务端下行
	MessageTypeInit       = "init"       // 连接时的全量快照
	MessageTypeCellUpdate = "cellUpdate" // 落子广播

	// 客户端上行
	MessageTypeAuthenticate = "authenticate" // 绑定身份
	MessageTypeColorCell    = "colorCell"    // 落子请求
)

// Envelope 上行消息信封，先解析type再分发
type Envelope struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Color    string `json:"color,omitempty"`
	Username string `json:"username,omitempty"`
}

// CellValue 格子的线上表示
// 兼容两种历史编码：裸颜色字符串和 {color, username} 对象。
// 解码后统一为带可选归属者的结构，两种线上形式不外泄。
type CellValue struct {
	Color    string `json:"color"`
	Username string `json:"username,omitempty"`
}

// UnmarshalJSON 解码两种线上形式
func (v *CellValue) UnmarshalJSON(data []byte) error {
	// 裸字符串形式："#ff0000"
	var color string
	if err := json.Unmarshal(data, &color); err == nil {
		v.Color = color
		v.Username = ""
		return nil
	}

	// 对象形式：{"color":"#ff0000","username":"alice"}
	type plain CellValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, errors.ErrMessageFormat)
	}
	*v = CellValue(p)
	return nil
}

// MarshalJSON 编码格子
// 无归属者的旧数据沿用裸字符串形式，其余用对象形式。
func (v CellValue) MarshalJSON() ([]byte, error) {
	if v.Username == "" {
		return json.Marshal(v.Color)
	}
	type plain CellValue
	return json.Marshal(plain(v))
}

// InitMessage 连接时的全量快照消息
type InitMessage struct {
	Type string               `json:"type"`
	Grid map[string]CellValue `json:"grid"`
}

// NewInitMessage 创建快照消息
func NewInitMessage(cells map[string]CellValue) *InitMessage {
	return &InitMessage{
		Type: MessageTypeInit,
		Grid: cells,
	}
}

// CellUpdateMessage 落子广播消息
type CellUpdateMessage struct {
	Type     string `json:"type"`
	Key      string `json:"key"`
	Color    string `json:"color"`
	Username string `json:"username,omitempty"`
}

// NewCellUpdateMessage 创建落子广播消息
func NewCellUpdateMessage(key, color, username string) *CellUpdateMessage {
	return &CellUpdateMessage{
		Type:     MessageTypeCellUpdate,
		Key:      key,
		Color:    color,
		Username: username,
	}
}

// ParseEnvelope 解析上行消息信封
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrMessageFormat)
	}
	if env.Type == "" {
		return nil, errors.New(errors.ErrMessageFormat, "消息缺少type字段")
	}
	return &env, nil
}
