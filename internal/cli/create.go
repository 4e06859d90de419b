package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacogips/mkapp/internal/action"
	"github.com/tacogips/mkapp/internal/app"
	"github.com/tacogips/mkapp/internal/config"
	"github.com/tacogips/mkapp/internal/debug"
	"github.com/tacogips/mkapp/internal/fetch"
	"github.com/tacogips/mkapp/internal/render"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [project-name]",
	Short: "Create a new project from a scaffold",
	Long: `Create a new project directory from a scaffold template.

Missing inputs are asked for interactively. With --data or --data-file the
command runs non-interactively and only installs dependencies.

Examples:
  mkapp create my-app
  mkapp create my-app --template hello-world-react
  mkapp create my-app -t express-api --data '{"npmClient":"yarn","secretApiKey":"sk_test"}'
  mkapp create my-app -t express-api --data-file inputs.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

// Create command flags
type createOptions struct {
	template     string
	branch       string
	data         string
	dataFile     string
	scaffoldsDir string
	repo         string
	dest         string
}

var createOpts createOptions

// registerCreateFlags adds the create flags to cmd. The root command and the
// create subcommand share them.
func registerCreateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&createOpts.template, FlagTemplate, "t", "", DescTemplate)
	cmd.Flags().StringVarP(&createOpts.branch, FlagBranch, "b", "", DescBranch)
	cmd.Flags().StringVar(&createOpts.data, FlagData, "", DescData)
	cmd.Flags().StringVar(&createOpts.dataFile, FlagDataFile, "", DescDataFile)
	cmd.Flags().StringVar(&createOpts.scaffoldsDir, FlagScaffoldsDir, "", DescScaffoldsDir)
	cmd.Flags().StringVar(&createOpts.repo, "repo", "", "Template repository (owner/name or URL), overriding config")
	cmd.Flags().StringVarP(&createOpts.dest, "dest", "d", "", "Directory to create the project in (default: current directory)")
}

func init() {
	registerCreateFlags(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	debug.DebugSection("[cli] create")

	projectName := ""
	if len(args) > 0 {
		projectName = args[0]
	}
	if err := ValidateProjectName(projectName); err != nil {
		return err
	}

	cfg, err := config.Load(globalConfig)
	if err != nil {
		return err
	}

	branch := createOpts.branch
	if branch == "" {
		branch = cfg.Repo.Branch
	}
	if err := ValidateBranch(branch); err != nil {
		return err
	}

	payload, err := parseData(createOpts.data, createOpts.dataFile)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg, createOpts.scaffoldsDir)
	if err != nil {
		return err
	}
	cache, err := newTemplateCache(cfg, createOpts.repo)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if globalQuiet {
		out = io.Discard
	}

	deps := app.Deps{
		Registry:        registry,
		Cache:           cache,
		Renderer:        render.NewEngine(),
		Runner:          action.NewRunner(),
		Prompter:        newSurveyPrompter(),
		Console:         app.Console{Out: out, Plain: globalNoColor},
		DestinationRoot: createOpts.dest,
	}

	result, err := app.CreateApp(cmd.Context(), app.CreateAppConfig{
		Branch:      branch,
		ProjectName: projectName,
		Template:    createOpts.template,
		Data:        payload,
	}, deps)
	if err != nil {
		return err
	}

	if len(payload) > 0 {
		printSuccess(fmt.Sprintf("Created %s at %s", result.ProjectName, result.ProjectRoot))
	}
	return nil
}

// newRegistry opens the scaffold registry. The flag beats the config; with
// neither, the built-in scaffolds are used.
func newRegistry(cfg *config.Config, flagDir string) (*scaffold.Registry, error) {
	dir := flagDir
	if dir == "" {
		dir = cfg.Scaffolds.Directory
	}
	if dir == "" {
		debug.Debug("[cli] Using built-in scaffolds")
		return scaffold.NewRegistry(scaffold.Builtin()), nil
	}

	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid scaffolds directory: %w", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, fmt.Errorf("scaffolds directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scaffolds directory is not a directory: %s", expanded)
	}
	debug.Debug("[cli] Using scaffolds from %s", expanded)
	var fsys fs.FS = os.DirFS(expanded)
	return scaffold.NewRegistry(fsys), nil
}

// newTemplateCache builds the template cache over the configured source.
// repoFlag, when set, replaces the configured repository.
func newTemplateCache(cfg *config.Config, repoFlag string) (*fetch.Cache, error) {
	repo := fetch.Repository{
		BaseURL: cfg.GitHub.BaseURL,
		Owner:   cfg.Repo.Owner,
		Name:    cfg.Repo.Name,
	}
	if repoFlag != "" {
		parsed, err := fetch.ParseRepository(repoFlag, cfg.GitHub.BaseURL)
		if err != nil {
			return nil, err
		}
		repo = parsed
	}

	token := cfg.GitHub.Token
	if token == "" {
		token = ghAuthToken()
	}

	var source fetch.Source
	switch cfg.Fetch.Method {
	case config.FetchGit:
		source = fetch.NewGit(token)
	default:
		gh := fetch.NewGitHub(token, cfg.GitHub.RequestTimeout())
		gh.APIURL = cfg.GitHub.APIURL
		gh.CodeloadURL = cfg.GitHub.CodeloadURL
		source = gh
	}
	debug.Debug("[cli] Fetching %s via %s into %s", repo, source.Name(), cfg.Cache.Directory)

	return fetch.NewCache(cfg.Cache.Directory, repo, source), nil
}
