package registry

import "github.com/Iron-Ham/stagehand/internal/logging"

// Installer constructs services and registers them, and later removes them.
type Installer interface {
	// Name identifies the installer in logs.
	Name() string

	// Install constructs and registers the installer's services.
	Install(r *Registry) error

	// Uninstall unregisters what Install registered and releases it.
	Uninstall(r *Registry)
}

// Installers runs a fixed, declared sequence of installers.
type Installers struct {
	list      []Installer
	installed []bool
	logger    *logging.Logger
}

// NewInstallers creates a sequence that runs list in the given order.
func NewInstallers(logger *logging.Logger, list ...Installer) *Installers {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Installers{
		list:      list,
		installed: make([]bool, len(list)),
		logger:    logger.WithComponent("installers"),
	}
}

// InstallAll runs every installer in declared order. An installer that fails
// is logged and skipped; the remaining installers still run. It returns the
// number of installers that succeeded.
func (s *Installers) InstallAll(r *Registry) int {
	ok := 0
	for i, inst := range s.list {
		if s.installed[i] {
			ok++
			continue
		}
		if err := inst.Install(r); err != nil {
			s.logger.Error("installer failed", "installer", inst.Name(), "error", err)
			continue
		}
		s.installed[i] = true
		ok++
		s.logger.Debug("installer ran", "installer", inst.Name())
	}
	return ok
}

// UninstallAll runs Uninstall for every installed installer in the same
// declared order used by InstallAll, not in reverse.
func (s *Installers) UninstallAll(r *Registry) {
	for i, inst := range s.list {
		if !s.installed[i] {
			continue
		}
		inst.Uninstall(r)
		s.installed[i] = false
		s.logger.Debug("installer removed", "installer", inst.Name())
	}
}

// Installed returns the names of installers whose Install succeeded, in order.
func (s *Installers) Installed() []string {
	var names []string
	for i, inst := range s.list {
		if s.installed[i] {
			names = append(names, inst.Name())
		}
	}
	return names
}

// Func adapts a pair of functions into an Installer.
type Func struct {
	InstallerName string
	InstallFunc   func(*Registry) error
	UninstallFunc func(*Registry)
}

// Name implements Installer.
func (f Func) Name() string { return f.InstallerName }

// Install implements Installer.
func (f Func) Install(r *Registry) error {
	if f.InstallFunc == nil {
		return nil
	}
	return f.InstallFunc(r)
}

// Uninstall implements Installer.
func (f Func) Uninstall(r *Registry) {
	if f.UninstallFunc != nil {
		f.UninstallFunc(r)
	}
}
