// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/gpoffer/locks"

// Conn 包装一个 ZooKeeper 会话。
type Conn struct {
	conn *zk.Conn
}

// Connect 建立 ZooKeeper 会话。会话断开后临时节点自动清理，
// 持锁进程崩溃不会把锁永久留在集群里。
func Connect(servers []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

func (c *Conn) Close() {
	c.conn.Close()
}

// NewLock 返回 resourceID 对应的分布式锁。
// 底层是临时顺序节点：最小序号者持锁，其余只监听前一个节点。
func (c *Conn) NewLock(resourceID string) *zk.Lock {
	return zk.NewLock(c.conn, lockRoot+"/"+resourceID, zk.WorldACL(zk.PermAll))
}
