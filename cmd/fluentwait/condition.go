package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/BaSui01/fluentwait/wait"
)

// condition runs one wait against a matcher. The receiver first order
// lets matcher method expressions serve directly.
type condition func(m *wait.LocatorMatcher, ctx context.Context) error

// parseCondition turns an --until expression into a condition.
func parseCondition(expr string) (condition, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "", "present":
		return (*wait.LocatorMatcher).IsPresent, nil
	case "displayed":
		return (*wait.LocatorMatcher).IsDisplayed, nil
	case "enabled":
		return (*wait.LocatorMatcher).IsEnabled, nil
	case "selected":
		return (*wait.LocatorMatcher).IsSelected, nil
	case "clickable":
		return (*wait.LocatorMatcher).IsClickable, nil
	}

	if strings.HasPrefix(expr, "size") {
		return parseSize(strings.TrimPrefix(expr, "size"))
	}
	if rest, ok := strings.CutPrefix(expr, "text~"); ok {
		re, err := regexp.Compile(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid text pattern: %w", err)
		}
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasTextMatching(ctx, re) }, nil
	}
	if rest, ok := strings.CutPrefix(expr, "attr:"); ok {
		name, value, found := strings.Cut(rest, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("attribute condition must look like attr:<name>=<value>")
		}
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasAttribute(ctx, name, value) }, nil
	}

	key, value, found := strings.Cut(expr, "=")
	if !found {
		return nil, fmt.Errorf("unknown condition %q", expr)
	}
	switch key {
	case "text":
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasText(ctx, value) }, nil
	case "value":
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasValue(ctx, value) }, nil
	case "id":
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasID(ctx, value) }, nil
	case "name":
		return func(m *wait.LocatorMatcher, ctx context.Context) error { return m.HasName(ctx, value) }, nil
	}
	return nil, fmt.Errorf("unknown condition %q", expr)
}

func parseSize(rest string) (condition, error) {
	// Longest operators first.
	ops := []struct {
		op string
		fn func(b *wait.SizeBuilder, ctx context.Context, n int) error
	}{
		{"!=", (*wait.SizeBuilder).NotEqualTo},
		{"<=", (*wait.SizeBuilder).LessThanOrEqualTo},
		{">=", (*wait.SizeBuilder).GreaterThanOrEqualTo},
		{"=", (*wait.SizeBuilder).EqualTo},
		{"<", (*wait.SizeBuilder).LessThan},
		{">", (*wait.SizeBuilder).GreaterThan},
	}
	for _, o := range ops {
		num, ok := strings.CutPrefix(rest, o.op)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid size %q", num)
		}
		fn := o.fn
		return func(m *wait.LocatorMatcher, ctx context.Context) error {
			return fn(m.HasSizeThat(), ctx, n)
		}, nil
	}
	return nil, fmt.Errorf("size condition needs an operator (=, !=, <, <=, >, >=)")
}
