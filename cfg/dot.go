package cfg

import (
	"fmt"
	"os/exec"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// DOT renders the graph structure in Graphviz syntax. Block labels are
// the node identifiers.
func (c *Cfg) DOT() ([]byte, error) {
	return dot.MarshalMulti(c.graph, c.Name, "", "\t")
}

// RenderSVG pipes the DOT form through `dot -T svg -o <prefix>.svg`.
// The child's stdin is closed on every path so it can terminate.
func (c *Cfg) RenderSVG(prefix string) error {
	buf, err := c.DOT()
	if err != nil {
		return err
	}
	cmd := exec.Command("dot", "-T", "svg", "-o", prefix+".svg")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("rendering %s.svg: %w", prefix, err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("rendering %s.svg: %w", prefix, err)
	}
	_, werr := stdin.Write(buf)
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("rendering %s.svg: %w", prefix, err)
	}
	if werr != nil {
		return fmt.Errorf("rendering %s.svg: %w", prefix, werr)
	}
	return nil
}
