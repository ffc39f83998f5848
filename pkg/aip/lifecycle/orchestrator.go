// Package lifecycle reconciles the package catalog with the installed
// manifest and drives install, upgrade, remove and run.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/aipman/pkg/aip"
	"github.com/provide-io/aipman/pkg/aip/catalog"
	"github.com/provide-io/aipman/pkg/aip/manifest"
	"github.com/provide-io/aipman/pkg/aip/version"
)

// SuggestionLimit caps the "did you mean" names of a not-found result
const SuggestionLimit = 3

// Catalog supplies the packages available for install.
type Catalog interface {
	Fetch(ctx context.Context, override string) ([]aip.Package, error)
}

// Materializer places, removes and runs bundle artifacts.
type Materializer interface {
	Install(ctx context.Context, pkg aip.Package) (string, error)
	Remove(pkg aip.Package) error
	Run(ctx context.Context, pkg aip.Package, args []string) (int, error)
}

// Store persists the installed manifest.
type Store interface {
	Load() (manifest.Manifest, error)
	Save(m manifest.Manifest) error
}

// Orchestrator is the only writer of the installed manifest. Every mutating
// operation performs its side effects first and persists the manifest last.
type Orchestrator struct {
	catalog Catalog
	bundles Materializer
	store   Store
	confirm Confirmer
	logger  hclog.Logger
	repo    string
}

// NewOrchestrator wires an Orchestrator. A nil Confirmer approves everything.
func NewOrchestrator(cat Catalog, bundles Materializer, store Store, confirm Confirmer, logger hclog.Logger) *Orchestrator {
	if confirm == nil {
		confirm = AlwaysYes{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{
		catalog: cat,
		bundles: bundles,
		store:   store,
		confirm: confirm,
		logger:  logger,
	}
}

// WithRepo makes every catalog fetch use repo instead of the default
// location. An empty repo restores the default.
func (o *Orchestrator) WithRepo(repo string) *Orchestrator {
	o.repo = repo
	return o
}

// Install installs name, or upgrades it when the catalog carries a newer
// version. An up-to-date package is left untouched.
func (o *Orchestrator) Install(ctx context.Context, name string) (Result, error) {
	m, err := o.store.Load()
	if err != nil {
		return Result{}, err
	}
	pkgs, err := o.catalog.Fetch(ctx, o.repo)
	if err != nil {
		return Result{}, err
	}

	candidate, ok := catalog.Lookup(pkgs, name)
	if !ok {
		o.logger.Debug("🔍 Package not in catalog", "package", name)
		return Result{Status: StatusNotFound, Package: aip.Package{Name: name}, Suggestions: catalog.Suggest(pkgs, name, SuggestionLimit)}, nil
	}

	current, installed := m.Find(name)
	if !installed {
		return o.installNew(ctx, m, candidate)
	}

	if !o.upgradable(current, candidate) {
		o.logger.Debug("✅ Package already current", "package", current.String(), "catalog", candidate.Version)
		return Result{Status: StatusCurrent, Package: current}, nil
	}

	ok, err = o.confirm.Confirm(fmt.Sprintf("Upgrade %s from %s to %s?", name, current.Version, candidate.Version))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Status: StatusDeclined, Package: candidate, Previous: current}, nil
	}

	next, err := o.replace(ctx, m, current, candidate)
	if next == nil {
		return Result{}, err
	}
	result := Result{Status: StatusUpgraded, Package: candidate, Previous: current}
	if saveErr := o.store.Save(next); saveErr != nil {
		return Result{}, errors.Join(err, saveErr)
	}
	if err != nil {
		return result, err
	}
	o.logger.Info("⬆️ Package upgraded", "package", name, "from", current.Version, "to", candidate.Version)
	return result, nil
}

func (o *Orchestrator) installNew(ctx context.Context, m manifest.Manifest, pkg aip.Package) (Result, error) {
	ok, err := o.confirm.Confirm(fmt.Sprintf("Install %s %s?", pkg.Name, pkg.Version))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Status: StatusDeclined, Package: pkg}, nil
	}

	if _, err := o.bundles.Install(ctx, pkg); err != nil {
		return Result{}, fmt.Errorf("installing %s: %w", pkg.String(), err)
	}
	if err := o.store.Save(m.Replace(pkg)); err != nil {
		return Result{}, err
	}

	o.logger.Info("📦 Package installed", "package", pkg.String())
	return Result{Status: StatusInstalled, Package: pkg}, nil
}

// replace installs candidate, then removes the artifact of current, and
// returns the manifest to persist. A nil manifest means nothing changed on
// disk. A non-nil manifest with an error means the new artifact is in place
// but the old one could not be removed.
func (o *Orchestrator) replace(ctx context.Context, m manifest.Manifest, current, candidate aip.Package) (manifest.Manifest, error) {
	if _, err := o.bundles.Install(ctx, candidate); err != nil {
		return nil, fmt.Errorf("installing %s: %w", candidate.String(), err)
	}

	next := m.Replace(candidate)
	if err := o.bundles.Remove(current); err != nil {
		return next, fmt.Errorf("removing %s: %w", current.String(), err)
	}
	return next, nil
}

// upgradable compares versions; an unparsable version warns and counts as
// not upgradable.
func (o *Orchestrator) upgradable(current, candidate aip.Package) bool {
	ok, err := version.IsUpgradableTo(current, candidate)
	if err != nil {
		o.logger.Warn("⚠️ Cannot compare versions", "package", current.Name, "installed", current.Version, "catalog", candidate.Version, "error", err)
		return false
	}
	return ok
}

// Remove deletes the artifact of name and its manifest entry.
func (o *Orchestrator) Remove(ctx context.Context, name string) (Result, error) {
	m, err := o.store.Load()
	if err != nil {
		return Result{}, err
	}

	pkg, installed := m.Find(name)
	if !installed {
		return Result{Status: StatusNotInstalled, Package: aip.Package{Name: name}}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ok, err := o.confirm.Confirm(fmt.Sprintf("Remove %s %s?", pkg.Name, pkg.Version))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Status: StatusDeclined, Package: pkg}, nil
	}

	if err := o.bundles.Remove(pkg); err != nil {
		return Result{}, err
	}
	if err := o.store.Save(m.Without(name)); err != nil {
		return Result{}, err
	}

	o.logger.Info("🗑️ Package removed", "package", pkg.String())
	return Result{Status: StatusRemoved, Package: pkg}, nil
}

// Upgrade moves every installed package with a strictly newer catalog entry
// to that entry. Packages that are not in the catalog, already current,
// declined or failing keep their old entry. A failure on one package does not
// stop the others; the manifest is saved once and the failures are joined.
func (o *Orchestrator) Upgrade(ctx context.Context) ([]Result, error) {
	m, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	pkgs, err := o.catalog.Fetch(ctx, o.repo)
	if err != nil {
		return nil, err
	}

	var (
		results []Result
		errs    []error
		changed bool
	)
	next := make(manifest.Manifest, 0, len(m))

	for i, current := range m {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			next = append(next, m[i:]...)
			break
		}

		candidate, ok := catalog.Lookup(pkgs, current.Name)
		if !ok {
			o.logger.Debug("🔍 Installed package not in catalog", "package", current.Name)
			next = append(next, current)
			continue
		}
		if !o.upgradable(current, candidate) {
			next = append(next, current)
			continue
		}

		ok, err := o.confirm.Confirm(fmt.Sprintf("Upgrade %s from %s to %s?", current.Name, current.Version, candidate.Version))
		if err != nil {
			errs = append(errs, err)
			next = append(next, current)
			continue
		}
		if !ok {
			results = append(results, Result{Status: StatusDeclined, Package: candidate, Previous: current})
			next = append(next, current)
			continue
		}

		if _, err := o.bundles.Install(ctx, candidate); err != nil {
			o.logger.Error("❌ Upgrade failed", "package", current.Name, "error", err)
			errs = append(errs, fmt.Errorf("installing %s: %w", candidate.String(), err))
			next = append(next, current)
			continue
		}
		if err := o.bundles.Remove(current); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", current.String(), err))
		}

		o.logger.Info("⬆️ Package upgraded", "package", current.Name, "from", current.Version, "to", candidate.Version)
		results = append(results, Result{Status: StatusUpgraded, Package: candidate, Previous: current})
		next = append(next, candidate)
		changed = true
	}

	if changed {
		if err := o.store.Save(next); err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// List returns the installed packages in manifest order.
func (o *Orchestrator) List() (manifest.Manifest, error) {
	return o.store.Load()
}

// Run executes the installed artifact of name with args and reports its exit
// code.
func (o *Orchestrator) Run(ctx context.Context, name string, args []string) (Result, error) {
	m, err := o.store.Load()
	if err != nil {
		return Result{}, err
	}

	pkg, installed := m.Find(name)
	if !installed {
		return Result{Status: StatusNotInstalled, Package: aip.Package{Name: name}}, nil
	}

	code, err := o.bundles.Run(ctx, pkg, args)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: StatusExecuted, Package: pkg, ExitCode: code}, nil
}
