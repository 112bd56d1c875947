package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/manifold-nav/internal/domains/clinical"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/safety"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/wordgame"
	"github.com/danielpatrickdp/manifold-nav/internal/governor"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifest"
	"github.com/danielpatrickdp/manifold-nav/internal/navigation"
	"github.com/danielpatrickdp/manifold-nav/internal/tracestore"
)

// #region main

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var exitCode int
	switch os.Args[1] {
	case "puzzle":
		exitCode = runPuzzle(os.Args[2:])
	case "clinical":
		exitCode = runClinical(os.Args[2:])
	case "safety":
		exitCode = runSafety(os.Args[2:])
	default:
		usage()
		exitCode = 2
	}
	os.Exit(exitCode)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: navigator puzzle --letters JAIILUNG --candidate JAILING [options]")
	fmt.Fprintln(os.Stderr, "       navigator clinical [--radicular-pain] [--spasm] [--saddle-anesthesia] ... [options]")
	fmt.Fprintln(os.Stderr, "       navigator safety [--critical-signal] [--policy-violation] [options]")
	fmt.Fprintln(os.Stderr, "options: --manifest path  --json  --db path  --session id")
}

// #endregion main

// #region shared-flags

// sharedFlags are the options common to every subcommand.
type sharedFlags struct {
	manifestPath string
	jsonOut      bool
	dbPath       string
	sessionID    string
}

func registerShared(fs *flag.FlagSet) *sharedFlags {
	sf := &sharedFlags{}
	fs.StringVar(&sf.manifestPath, "manifest", "", "path to manifest YAML (defaults to built-in hypotheses)")
	fs.BoolVar(&sf.jsonOut, "json", false, "emit JSON trace")
	fs.StringVar(&sf.dbPath, "db", "", "persist the trace entry to this SQLite database")
	fs.StringVar(&sf.sessionID, "session", "", "session id for trace persistence (default: new UUID)")
	return sf
}

// buildController wires the controller, from the manifest when given or
// from the built-in domain hypotheses otherwise.
func buildController(sf *sharedFlags, fallback []interpretant.Hypothesis) (*navigation.Controller, error) {
	hypotheses := fallback
	config := navigation.DefaultControllerConfig()

	if sf.manifestPath != "" {
		spec, err := manifest.Load(sf.manifestPath)
		if err != nil {
			return nil, err
		}
		registry := manifest.Registry{}
		for id, factory := range wordgame.Registry() {
			registry[id] = factory
		}
		for id, factory := range clinical.Registry() {
			registry[id] = factory
		}
		for id, factory := range safety.Registry() {
			registry[id] = factory
		}
		hypotheses, err = manifest.BuildHypotheses(spec, registry, true)
		if err != nil {
			return nil, err
		}
		config.GovernorOverrides = manifest.BuildGovernorConfigs(spec, governor.DefaultConfig())
	}

	manager, err := interpretant.NewManager(hypotheses)
	if err != nil {
		return nil, err
	}
	return navigation.NewController(manager, config), nil
}

// #endregion shared-flags

// #region subcommands

func runPuzzle(args []string) int {
	fs := flag.NewFlagSet("puzzle", flag.ExitOnError)
	sf := registerShared(fs)
	letters := fs.String("letters", "", "source letter multiset, e.g. JAIILUNG")
	candidate := fs.String("candidate", "", "candidate word")
	fs.Parse(args)

	if *letters == "" || *candidate == "" {
		fmt.Fprintln(os.Stderr, "puzzle: --letters and --candidate are required")
		return 2
	}
	return step(sf, wordgame.Sign{Letters: *letters, Candidate: *candidate}, wordgame.Hypotheses())
}

func runClinical(args []string) int {
	fs := flag.NewFlagSet("clinical", flag.ExitOnError)
	sf := registerShared(fs)
	sign := clinical.Sign{}
	fs.BoolVar(&sign.RadicularPain, "radicular-pain", false, "radicular pain present")
	fs.BoolVar(&sign.SpasmPresent, "spasm", false, "muscle spasm present")
	fs.BoolVar(&sign.SaddleAnesthesia, "saddle-anesthesia", false, "saddle anesthesia present")
	fs.BoolVar(&sign.BladderDysfunction, "bladder-dysfunction", false, "bladder dysfunction present")
	fs.BoolVar(&sign.BilateralWeakness, "bilateral-weakness", false, "bilateral weakness present")
	fs.BoolVar(&sign.Progression, "progression", false, "symptoms progressing")
	fs.BoolVar(&sign.Fever, "fever", false, "fever present")
	fs.StringVar(&sign.Notes, "notes", "", "free-text clinical notes")
	fs.Parse(args)

	return step(sf, sign, clinical.Hypotheses())
}

func runSafety(args []string) int {
	fs := flag.NewFlagSet("safety", flag.ExitOnError)
	sf := registerShared(fs)
	sign := safety.Sign{}
	fs.BoolVar(&sign.CriticalSignal, "critical-signal", false, "critical signal present")
	fs.BoolVar(&sign.PolicyViolation, "policy-violation", false, "policy violation present")
	fs.StringVar(&sign.Notes, "notes", "", "free-text context notes")
	fs.Parse(args)

	return step(sf, sign, safety.Hypotheses())
}

// #endregion subcommands

// #region step

func step(sf *sharedFlags, sign any, fallback []interpretant.Hypothesis) int {
	controller, err := buildController(sf, fallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		return 2
	}

	entry, err := controller.Step(sign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "step: %v\n", err)
		return 1
	}

	if sf.dbPath != "" {
		if err := persist(sf, entry); err != nil {
			fmt.Fprintf(os.Stderr, "persist: %v\n", err)
			return 1
		}
	}

	emit(entry, sf.jsonOut)
	return 0
}

func persist(sf *sharedFlags, entry navigation.TraceEntry) error {
	store, err := tracestore.NewStore(sf.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID := sf.sessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	existing, err := store.Session(sessionID)
	if err != nil {
		return err
	}
	return store.Append(sessionID, len(existing), entry)
}

// #endregion step

// #region output

// tracePayload is the flat JSON/text view of one trace entry.
type tracePayload struct {
	Manifold       string             `json:"manifold"`
	Family         string             `json:"family"`
	Decision       string             `json:"decision"`
	Cause          string             `json:"cause,omitempty"`
	Tension        float64            `json:"tension"`
	Velocity       float64            `json:"velocity"`
	Accel          float64            `json:"accel"`
	Posterior      map[string]float64 `json:"posterior"`
	RuinHits       []string           `json:"ruin_hits,omitempty"`
	Transforms     []string           `json:"active_transforms,omitempty"`
	IsRuin         bool               `json:"is_ruin"`
	ViolationCount int                `json:"violation_count"`
}

func emit(entry navigation.TraceEntry, asJSON bool) {
	payload := tracePayload{
		Manifold:       entry.Evaluation.ManifoldID,
		Family:         entry.Evaluation.Family,
		Decision:       string(entry.Decision.Verdict),
		Cause:          string(entry.Decision.Cause),
		Tension:        entry.Decision.Metrics.Tension,
		Velocity:       entry.Decision.Metrics.Velocity,
		Accel:          entry.Decision.Metrics.Accel,
		Posterior:      entry.Posterior,
		RuinHits:       entry.Evaluation.RuinHits,
		Transforms:     entry.Evaluation.AppliedTransforms,
		IsRuin:         entry.Evaluation.IsRuin,
		ViolationCount: len(entry.Evaluation.Result.Violations),
	}

	if asJSON {
		data, _ := json.Marshal(payload)
		fmt.Println(string(data))
		return
	}

	fmt.Printf("manifold=%s family=%s\n", payload.Manifold, payload.Family)
	fmt.Printf("decision=%s cause=%s\n", payload.Decision, payload.Cause)
	fmt.Printf("tension=%.3f velocity=%.3f accel=%.3f\n", payload.Tension, payload.Velocity, payload.Accel)
	fmt.Printf("posterior=%v\n", payload.Posterior)
	if len(payload.RuinHits) > 0 {
		fmt.Printf("ruin_hits=%v\n", payload.RuinHits)
	}
	for _, v := range entry.Evaluation.Result.Violations {
		fmt.Printf("violation [%s] %s: %s\n", v.Severity, v.Code, v.Message)
	}
}

// #endregion output
