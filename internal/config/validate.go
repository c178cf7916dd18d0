package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Validation failures are
// fatal at startup; the pipeline never starts with a bad config.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WIPRoot) == "" {
		return errors.New("paths.wip_root must be set")
	}
	if strings.TrimSpace(c.Paths.OutRoot) == "" {
		return errors.New("paths.out_root must be set")
	}
	if c.Paths.WIPRoot == c.Paths.OutRoot {
		return errors.New("paths.wip_root and paths.out_root must differ")
	}
	return nil
}

func (c *Config) validateDrive() error {
	device := strings.TrimSpace(c.Drive.Device)
	if device == "" {
		return errors.New("drive.device must be set")
	}
	if !strings.HasPrefix(device, "/dev/") {
		return fmt.Errorf("drive.device %q must be a device path under /dev", device)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RipPollInterval < 0 {
		return errors.New("workflow.rip_poll_interval must not be negative")
	}
	if c.Workflow.TranscodePollInterval < 0 {
		return errors.New("workflow.transcode_poll_interval must not be negative")
	}
	if c.Transcode.StableWindow < 0 {
		return errors.New("transcode.stable_window must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
}
