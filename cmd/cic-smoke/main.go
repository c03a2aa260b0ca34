// cic-smoke runs the kernel's judgment and reduction checks end to end
// against a seeded theory registry. With -dir it loads theory manifests
// from a directory; with -watch it re-runs the suite whenever a manifest
// changes.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Turnersoft/turn-formal-sub005/internal/cic"
	"github.com/Turnersoft/turn-formal-sub005/internal/theory"
)

func main() {
	dir := flag.String("dir", "", "directory of theory manifests to load")
	watch := flag.Bool("watch", false, "re-run the checks when a manifest changes (requires -dir)")
	flag.Parse()

	fmt.Println("=== CIC Kernel Smoke Test ===")

	reg := theory.NewRegistry()

	if _, err := reg.Publish(preludeManifest()); err != nil {
		log.Fatalf("publishing the built-in prelude failed: %v", err)
	}

	if *dir != "" {
		n, err := theory.LoadDir(reg, *dir)
		if err != nil {
			log.Fatalf("loading %s failed: %v", *dir, err)
		}

		fmt.Printf("loaded %d manifest(s) from %s\n", n, *dir)
	}

	if err := runChecks(reg); err != nil {
		log.Fatalf("smoke test failed: %v", err)
	}

	fmt.Println("✅ kernel smoke test passed")

	if !*watch {
		return
	}

	if *dir == "" {
		log.Fatal("-watch requires -dir")
	}

	w, err := theory.NewWatcher(reg, *dir)
	if err != nil {
		log.Fatalf("starting the watcher failed: %v", err)
	}
	defer w.Close()

	fmt.Printf("watching %s for manifest changes...\n", *dir)

	for {
		select {
		case ev := <-w.Events():
			fmt.Printf("reloaded %s (%s)\n", ev.Manifest.Name, ev.CID)

			if err := runChecks(reg); err != nil {
				log.Fatalf("smoke test failed after reload: %v", err)
			}

			fmt.Println("✅ kernel smoke test passed")
		case err := <-w.Errors():
			fmt.Printf("⚠️  watcher: %v\n", err)
		}
	}
}

// preludeManifest declares the Bool and Nat inductive types the checks use.
func preludeManifest() theory.TheoryManifest {
	return theory.TheoryManifest{
		Name:    "prelude",
		Version: "1.0.0",
		Inductives: []theory.InductiveDecl{
			{
				Name:  "Bool",
				Level: 0,
				Constructors: []theory.ConstructorDecl{
					{Name: "true"},
					{Name: "false"},
				},
			},
			{
				Name:  "Nat",
				Level: 0,
				Constructors: []theory.ConstructorDecl{
					{Name: "zero"},
					{Name: "succ", Params: []theory.ParamDecl{{Name: "n", Type: "Nat"}}},
				},
			},
		},
	}
}

func runChecks(reg *theory.Registry) error {
	ctx := cic.NewContext()

	if err := reg.Seed(ctx, "prelude", nil); err != nil {
		return fmt.Errorf("seeding the context: %w", err)
	}

	if err := checkSortSuccessor(ctx); err != nil {
		return err
	}

	fmt.Println("✅ universe successor law")

	if err := checkIdentityTyping(ctx); err != nil {
		return err
	}

	fmt.Println("✅ identity-function typing")

	if err := checkBetaRoundTrip(ctx); err != nil {
		return err
	}

	fmt.Println("✅ beta round-trip")

	if err := checkBoolElimination(ctx); err != nil {
		return err
	}

	fmt.Println("✅ constructor typing and iota reduction")

	return nil
}

func checkSortSuccessor(ctx *cic.Context) error {
	for n := cic.Level(0); n < 4; n++ {
		ty, err := cic.NewSort(cic.TypeAt(n)).TypeCheck(ctx)
		if err != nil {
			return err
		}

		if !ty.Equal(cic.NewUniverseType(n + 1)) {
			return fmt.Errorf("Type%d classified by %s", n, ty.String())
		}
	}

	return nil
}

func checkIdentityTyping(ctx *cic.Context) error {
	id := cic.NewLambda("x", cic.NewUniverseType(0), cic.NewVar("x"))

	ty, err := id.TypeCheck(ctx)
	if err != nil {
		return err
	}

	want := cic.NewPiType("x", cic.NewUniverseType(0), cic.NewUniverseType(0))
	if !ty.Equal(want) {
		return fmt.Errorf("identity typed as %s", ty.String())
	}

	return nil
}

func checkBetaRoundTrip(ctx *cic.Context) error {
	id := cic.NewLambda("x", cic.NewUniverseType(0), cic.NewVar("x"))

	got, err := cic.NewApp(id, cic.NewSort(cic.TypeAt(0))).Reduce(ctx)
	if err != nil {
		return err
	}

	if !got.Equal(cic.NewSort(cic.TypeAt(0))) {
		return fmt.Errorf("beta produced %s", got.String())
	}

	return nil
}

func checkBoolElimination(ctx *cic.Context) error {
	ty, err := cic.NewConstructor("true").TypeCheck(ctx)
	if err != nil {
		return err
	}

	if !ty.Equal(cic.NewNamedType("Bool")) {
		return fmt.Errorf("true typed as %s", ty.String())
	}

	neg := cic.NewMatch(cic.NewConstructor("true"),
		cic.MatchBranch{Pattern: cic.Pattern{Constructor: "true"}, Body: cic.NewConstructor("false")},
		cic.MatchBranch{Pattern: cic.Pattern{Constructor: "false"}, Body: cic.NewConstructor("true")},
	)

	if _, err := neg.TypeCheck(ctx); err != nil {
		return err
	}

	got, err := neg.Reduce(ctx)
	if err != nil {
		return err
	}

	if !got.Equal(cic.NewConstructor("false")) {
		return fmt.Errorf("negation reduced to %s", got.String())
	}

	return nil
}
