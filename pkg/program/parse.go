package program

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the top-level YAML shape. Steps stay as raw nodes so argument
// types can be checked against their YAML tags.
type document struct {
	Name  string    `yaml:"name"`
	Pen   yaml.Node `yaml:"pen"`
	Steps yaml.Node `yaml:"steps"`
}

// Parse decodes a YAML program.
func Parse(data []byte) (*Program, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("program: invalid YAML: %w", err)
	}

	prog := &Program{Name: doc.Name}
	if !doc.Pen.IsZero() {
		down, err := penValue(&doc.Pen)
		if err != nil {
			return nil, &StepError{Step: "pen", Line: doc.Pen.Line, Err: err}
		}
		prog.PenDown = &down
	}

	var c compiler
	if !doc.Steps.IsZero() {
		if err := c.sequence(&doc.Steps, "steps"); err != nil {
			return nil, err
		}
	}
	prog.Instructions = c.out
	return prog, nil
}

type compiler struct {
	out []Instruction
}

func (c *compiler) emit(in Instruction) error {
	if len(c.out) >= MaxInstructions {
		return &StepError{Step: in.Step, Line: in.Line, Command: in.Command, Err: ErrTooLarge}
	}
	c.out = append(c.out, in)
	return nil
}

func (c *compiler) sequence(node *yaml.Node, loc string) error {
	if node.Kind != yaml.SequenceNode {
		return &StepError{Step: loc, Line: node.Line, Err: fmt.Errorf("%w: expected a list of steps", ErrMalformed)}
	}
	for i, item := range node.Content {
		if err := c.step(item, fmt.Sprintf("%s[%d]", loc, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) step(node *yaml.Node, loc string) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Bare commands that take no argument: "- pen_up".
		return c.command(loc, node.Line, node.Value, nil)
	case yaml.MappingNode:
	default:
		return &StepError{Step: loc, Line: node.Line, Err: fmt.Errorf("%w: expected a mapping", ErrMalformed)}
	}

	fields := mapping(node)
	if _, ok := fields["repeat"]; ok {
		return c.repeat(node, fields, loc)
	}
	if len(fields) != 1 {
		return &StepError{Step: loc, Line: node.Line, Err: fmt.Errorf("%w: a step must have exactly one command, got %d", ErrMalformed, len(fields))}
	}
	key, value := node.Content[0], node.Content[1]
	return c.command(loc, key.Line, key.Value, value)
}

func (c *compiler) repeat(node *yaml.Node, fields map[string]*yaml.Node, loc string) error {
	countNode, body := fields["repeat"], fields["steps"]
	if body == nil || len(fields) != 2 {
		return &StepError{Step: loc, Line: node.Line, Command: "repeat", Err: fmt.Errorf("%w: repeat needs exactly a count and steps", ErrMalformed)}
	}
	if countNode.Kind != yaml.ScalarNode || countNode.ShortTag() != "!!int" {
		return &StepError{Step: loc, Line: countNode.Line, Command: "repeat", Err: typeError("repeat", "an integer", countNode)}
	}
	var count int
	if err := countNode.Decode(&count); err != nil || count < 0 {
		return &StepError{Step: loc, Line: countNode.Line, Command: "repeat", Err: typeError("repeat", "a non-negative integer", countNode)}
	}

	var inner compiler
	if err := inner.sequence(body, loc+".steps"); err != nil {
		return err
	}
	if n := len(inner.out); n > 0 && count > (MaxInstructions-len(c.out))/n {
		return &StepError{Step: loc, Line: node.Line, Command: "repeat", Err: ErrTooLarge}
	}
	for i := 0; i < count; i++ {
		c.out = append(c.out, inner.out...)
	}
	return nil
}

func (c *compiler) command(loc string, line int, name string, value *yaml.Node) error {
	fail := func(err error) error {
		return &StepError{Step: loc, Line: line, Command: name, Err: err}
	}
	in := Instruction{Step: loc, Line: line, Command: name}

	switch strings.ToLower(name) {
	case "forward", "backward", "left", "turn_left", "right", "turn_right":
		v, err := number(name, value)
		if err != nil {
			return fail(err)
		}
		in.run = linear(strings.ToLower(name), v)

	case "pen":
		down, err := penValue(value)
		if err != nil {
			return fail(err)
		}
		in.run = func(r Robot) error {
			if down {
				r.PenDown()
			} else {
				r.PenUp()
			}
			return nil
		}

	case "pen_up":
		in.run = func(r Robot) error { r.PenUp(); return nil }

	case "pen_down":
		in.run = func(r Robot) error { r.PenDown(); return nil }

	case "reset":
		in.run = func(r Robot) error { r.Reset(); return nil }

	case "move":
		args, err := object(name, value, "direction", "distance", "speed")
		if err != nil {
			return fail(err)
		}
		dir, dist, speed := args.str("direction"), args.num("distance"), args.num("speed")
		if err := args.err(); err != nil {
			return fail(err)
		}
		in.run = func(r Robot) error { return r.SetMove(dir, dist, speed) }

	case "turn":
		args, err := object(name, value, "direction", "degrees", "speed")
		if err != nil {
			return fail(err)
		}
		dir, deg, speed := args.str("direction"), args.num("degrees"), args.num("speed")
		if err := args.err(); err != nil {
			return fail(err)
		}
		in.run = func(r Robot) error { return r.SetTurn(dir, deg, speed) }

	case "wheels":
		args, err := object(name, value, "left", "right", "duration")
		if err != nil {
			return fail(err)
		}
		left, right, dur := args.num("left"), args.num("right"), args.num("duration")
		if err := args.err(); err != nil {
			return fail(err)
		}
		in.run = func(r Robot) error { return r.Wheels(left, right, dur) }

	default:
		return fail(fmt.Errorf("%w: %q", ErrUnknownCommand, name))
	}

	return c.emit(in)
}

func linear(name string, v float64) func(Robot) error {
	switch name {
	case "forward":
		return func(r Robot) error { return r.Forward(v) }
	case "backward":
		return func(r Robot) error { return r.Backward(v) }
	case "left", "turn_left":
		return func(r Robot) error { return r.TurnLeft(v) }
	default:
		return func(r Robot) error { return r.TurnRight(v) }
	}
}

// --- Argument decoding --------------------------------------------------

func typeError(field, want string, node *yaml.Node) error {
	if node == nil {
		return fmt.Errorf("%w: %s must be %s, got nothing", ErrInvalidType, field, want)
	}
	return fmt.Errorf("%w: %s must be %s, got %s %q", ErrInvalidType, field, want, node.ShortTag(), node.Value)
}

// number accepts YAML ints and floats, including .nan and .inf; the robot
// rejects the non-finite ones when the instruction runs.
func number(field string, node *yaml.Node) (float64, error) {
	if node == nil || node.Kind != yaml.ScalarNode {
		return 0, typeError(field, "a number", node)
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
	default:
		return 0, typeError(field, "a number", node)
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return 0, typeError(field, "a number", node)
	}
	return v, nil
}

func penValue(node *yaml.Node) (bool, error) {
	if node == nil || node.Kind != yaml.ScalarNode {
		return false, typeError("pen", `"up" or "down"`, node)
	}
	switch strings.ToLower(node.Value) {
	case "down":
		return true, nil
	case "up":
		return false, nil
	}
	if node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err == nil {
			return b, nil
		}
	}
	return false, typeError("pen", `"up" or "down"`, node)
}

// mapping indexes a mapping node's values by key.
func mapping(node *yaml.Node) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}
	return fields
}

// args decodes the fields of an argument mapping, remembering the first error.
type args struct {
	fields map[string]*yaml.Node
	first  error
}

func object(name string, node *yaml.Node, keys ...string) (*args, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, typeError(name, "a mapping of "+strings.Join(keys, ", "), node)
	}
	fields := mapping(node)
	for k := range fields {
		if !slices.Contains(keys, k) {
			return nil, fmt.Errorf("%w: %s has unknown field %q", ErrMalformed, name, k)
		}
	}
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("%w: %s is missing %q", ErrMalformed, name, k)
		}
	}
	return &args{fields: fields}, nil
}

func (a *args) num(key string) float64 {
	v, err := number(key, a.fields[key])
	if err != nil && a.first == nil {
		a.first = err
	}
	return v
}

func (a *args) str(key string) string {
	node := a.fields[key]
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		if a.first == nil {
			a.first = typeError(key, "a string", node)
		}
		return ""
	}
	return node.Value
}

func (a *args) err() error {
	return a.first
}
