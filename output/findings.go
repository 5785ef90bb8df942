package output

import (
	"fmt"
	"sort"

	"github.com/chioni16/ssa/cfg"
	"github.com/chioni16/ssa/sccp"
)

// Finding rule identifiers.
const (
	RuleConstantValue = "SSA-CONST-001"
	RuleDeadEdge      = "SSA-DEAD-001"
)

// Finding is one reportable fact the propagation proved about a
// function: an operation that always yields the same value, or a CFG
// edge no execution can take.
type Finding struct {
	RuleID   string `json:"rule_id"`
	Function string `json:"function"`
	Message  string `json:"message"`
	Name     string `json:"name,omitempty"`
	Row      int    `json:"row,omitempty"`
	Col      int    `json:"col,omitempty"`
}

// CollectFindings derives findings from one function's SCCP result.
// Constant definitions themselves are not findings; only operations
// proven constant and never-executable edges are.
func CollectFindings(c *cfg.Cfg, res *sccp.Result) []Finding {
	var findings []Finding

	for _, label := range sortedLabels(c) {
		for _, inst := range c.Blocks[label].Insts {
			if !inst.IsValue() {
				continue
			}
			cell := res.Lattice(inst.Dest)
			if cell.Kind != sccp.Constant {
				continue
			}
			f := Finding{
				RuleID:   RuleConstantValue,
				Function: c.Name,
				Name:     inst.Dest,
				Message:  fmt.Sprintf("%s always evaluates to %s", inst.Dest, cell.Value),
			}
			if inst.Pos != nil {
				f.Row, f.Col = inst.Pos.Row, inst.Pos.Col
			}
			findings = append(findings, f)
		}
	}

	for _, label := range sortedLabels(c) {
		for _, succ := range c.Successors(label) {
			if res.Executable[sccp.Edge{From: label, To: succ}] {
				continue
			}
			findings = append(findings, Finding{
				RuleID:   RuleDeadEdge,
				Function: c.Name,
				Name:     label + "->" + succ,
				Message:  fmt.Sprintf("edge %s -> %s is never taken", label, succ),
			})
		}
	}

	return findings
}

func sortedLabels(c *cfg.Cfg) []string {
	labels := make([]string, 0, len(c.Blocks))
	for _, b := range blocksByNode(c) {
		labels = append(labels, b.Label)
	}
	return labels
}

func blocksByNode(c *cfg.Cfg) []*cfg.BasicBlock {
	bs := make([]*cfg.BasicBlock, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		bs = append(bs, b)
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].Node < bs[j].Node })
	return bs
}
