package gnes

import "fmt"

func (n *nes) setOptions(options ...func(*nes) error) error {
	for i, option := range options {
		if err := option(n); err != nil {
			return fmt.Errorf("failed to set option index %d, err=%v", i, err)
		}
	}
	return nil
}

func (n *nes) setCart(path string) error {
	n.cartPath = path
	return nil
}

func (n *nes) setVerbose(verbose bool) error {
	n.verbose = verbose
	return nil
}

func (n *nes) setHeadless(headless bool) error {
	n.headless = headless
	return nil
}

func CartPath(path string) func(n *nes) error {
	return func(n *nes) error {
		return n.setCart(path)
	}
}

func Verbose(verbose bool) func(n *nes) error {
	return func(n *nes) error {
		return n.setVerbose(verbose)
	}
}

// Headless runs the machine without a window, eg for tests and benchmarks.
func Headless(headless bool) func(n *nes) error {
	return func(n *nes) error {
		return n.setHeadless(headless)
	}
}
