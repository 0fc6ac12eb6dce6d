package codec

import (
	"encoding/json"

	"github.com/oxhq/astgrep/internal/ast"
)

// NodeInfoJSON is the compact-key node-info wire shape of spec.md §4.6.
type NodeInfoJSON struct {
	Kind  string `json:"kind"`
	SB    int    `json:"sb"`
	EB    int    `json:"eb"`
	SR    int    `json:"sr"`
	SC    int    `json:"sc"`
	ER    int    `json:"er"`
	EC    int    `json:"ec"`
	Named bool   `json:"named"`
	CC    int    `json:"cc"`
	NCC   int    `json:"ncc"`
}

// nodeInfoJSON converts an ast.Info to its compact wire shape.
func nodeInfoJSON(info ast.Info) NodeInfoJSON {
	return NodeInfoJSON{
		Kind:  info.Kind,
		SB:    info.Range.StartByte,
		EB:    info.Range.EndByte,
		SR:    info.Range.StartPoint.Row,
		SC:    info.Range.StartPoint.Col,
		ER:    info.Range.EndPoint.Row,
		EC:    info.Range.EndPoint.Col,
		Named: info.Named,
		CC:    info.ChildCount,
		NCC:   info.NamedCount,
	}
}

// MarshalNodeInfo renders a single node-info, or JSON null if present is
// false (the "missing node" case: node_parent/node_next/node_prev on a node
// with no such neighbor).
func MarshalNodeInfo(info ast.Info, present bool) ([]byte, error) {
	if !present || info.Kind == "" {
		return json.Marshal(nil)
	}
	return json.Marshal(nodeInfoJSON(info))
}

// MarshalNodeInfoList renders node_children/node_named_children's array of
// infos.
func MarshalNodeInfoList(infos []ast.Info) ([]byte, error) {
	out := make([]NodeInfoJSON, len(infos))
	for i, info := range infos {
		out[i] = nodeInfoJSON(info)
	}
	return json.Marshal(out)
}
