package servecmder

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/himi-ai-lab/chatrelay/pkg/config"
)

var _ = Describe("Serve Command", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		for _, key := range []string{config.EnvPort, config.EnvAPIKey, config.EnvBaseURL, config.EnvModel, config.EnvMaxTokens, config.EnvUpstreamTimeout, config.EnvDebug} {
			prev, had := os.LookupEnv(key)
			Expect(os.Unsetenv(key)).To(Succeed())
			DeferCleanup(func() {
				if had {
					os.Setenv(key, prev)
				} else {
					os.Unsetenv(key)
				}
			})
		}
	})

	resolve := func(args ...string) (config.Config, error) {
		cmder := &serveCommander{}
		cmd := newServeCmd(cmder)
		Expect(cmd.Flags().Parse(args)).To(Succeed())
		return cmder.resolveConfig(cmd)
	}

	It("uses the defaults", func() {
		cfg, err := resolve("--env-file", filepath.Join(tmpDir, ".env"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ListenAddr()).To(Equal("0.0.0.0:10000"))
	})

	It("lets flags override the environment", func() {
		Expect(os.Setenv(config.EnvPort, "9000")).To(Succeed())

		cfg, err := resolve("--env-file", "", "--port", "9100", "--max-tokens", "64", "--debug")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9100))
		Expect(cfg.Upstream.MaxTokens).To(Equal(64))
		Expect(cfg.Debug).To(BeTrue())
	})

	It("keeps the environment when a flag is not set", func() {
		Expect(os.Setenv(config.EnvPort, "9000")).To(Succeed())

		cfg, err := resolve("--env-file", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9000))
	})

	It("rejects invalid flag values", func() {
		_, err := resolve("--env-file", "", "--port", "0")
		Expect(err).To(MatchError(ContainSubstring("invalid configuration")))
	})

	It("fails on an unreadable config file", func() {
		_, err := resolve("--config", filepath.Join(tmpDir, "missing.toml"))
		Expect(err).To(MatchError(ContainSubstring("could not load configuration")))
	})
})
