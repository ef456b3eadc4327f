package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/habitual/internal/logging"
	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/config"
	"github.com/cognicore/habitual/pkg/habitual/stoplist"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage habit catalogs",
	}
	cmd.AddCommand(newCatalogShowCmd(opts))
	cmd.AddCommand(newCatalogImportCmd(opts))
	cmd.AddCommand(newCatalogListCmd(opts))
	cmd.AddCommand(newCatalogStopwordsCmd(opts))
	return cmd
}

func newCatalogShowCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the catalog the engine would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			cat := rt.engine.Catalog()
			var data []byte
			if jsonOutput {
				data, err = json.MarshalIndent(struct {
					Categories []catalog.Category `json:"categories"`
				}{cat.Categories()}, "", "  ")
			} else {
				data, err = yaml.Marshal(cat)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output as JSON instead of YAML")
	return cmd
}

func newCatalogImportCmd(opts *globalOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a YAML catalog and save it to the store",
		Long: `Read a catalog file, validate it and save it under --name in the
configured store. Set catalog.source=store and catalog.name to serve it.`,
		Example: `  HABITUAL_STORE_DRIVER=sqlite HABITUAL_STORE_PATH=habitual.db habitual catalog import habits.yaml --name team`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			cat, err := catalog.LoadYAML(args[0])
			if err != nil {
				return err
			}

			st, err := config.OpenStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.Store.Driver == config.DriverMemory {
				logging.Warn().Msg("store driver is memory; the imported catalog is lost on exit")
			}
			if err := st.SaveCatalog(ctx, name, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved catalog %q: %d categories, %d habits\n", name, cat.Len(), len(cat.Flatten()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", store.DefaultCatalogName, "catalog name in the store")
	return cmd
}

func newCatalogListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalogs saved in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			st, err := config.OpenStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.ListCatalogs(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalogs stored.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newCatalogStopwordsCmd(opts *globalOptions) *cobra.Command {
	var (
		th         = stoplist.DefaultThresholds()
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Suggest stopwords for the active catalog",
		Long: `List catalog terms that appear in many habits, spread evenly over
categories and have no strong partner term. Such terms blur category
similarity; add them to engine.stopwords or engine.stopwords_path.`,
		Example: `  habitual catalog stopwords
  habitual catalog stopwords --yaml > stopwords.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			existing := stoplist.NewManager(rt.comp.Tokenizer.Stopwords()).All()
			candidates := stoplist.Suggest(rt.engine.Catalog(), rt.comp.Tokenizer, existing, th)
			out := cmd.OutOrStdout()

			if yamlOutput {
				terms := append([]string{}, existing...)
				for _, c := range candidates {
					terms = append(terms, c.Term)
				}
				data, err := yaml.Marshal(config.Stoplist{Terms: terms})
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			if len(candidates) == 0 {
				fmt.Fprintln(out, "No stopword candidates.")
				return nil
			}
			fmt.Fprintf(out, "%-16s %6s %6s %8s %6s\n", "TERM", "DF%", "NPMI", "ENTROPY", "SCORE")
			for _, c := range candidates {
				fmt.Fprintf(out, "%-16s %6.1f %6.2f %8.2f %6.2f\n",
					c.Term, c.Reason.DFPercent, c.Reason.PMIMax, c.Reason.CatEntropy, c.Score)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&th.DFPercent, "min-df", th.DFPercent, "minimum share of habits containing the term, in percent")
	cmd.Flags().Float64Var(&th.PMIMax, "max-npmi", th.PMIMax, "maximum NPMI with any other term")
	cmd.Flags().Float64Var(&th.CatEntropy, "min-entropy", th.CatEntropy, "minimum normalized category entropy")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "print a stopwords file including current stopwords")
	return cmd
}
