package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/himi-ai-lab/chatrelay/pkg/config"
)

var relayEnv = []string{
	config.EnvAPIKey,
	config.EnvBaseURL,
	config.EnvPort,
	config.EnvModel,
	config.EnvMaxTokens,
	config.EnvUpstreamTimeout,
	config.EnvDebug,
}

// restoreAfterTest puts key back to its current state once the test finishes.
func restoreAfterTest(key string) {
	prev, had := os.LookupEnv(key)
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func setenv(key, value string) {
	restoreAfterTest(key)
	Expect(os.Setenv(key, value)).To(Succeed())
}

func unsetenv(key string) {
	restoreAfterTest(key)
	Expect(os.Unsetenv(key)).To(Succeed())
}

func writeFile(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		for _, key := range relayEnv {
			unsetenv(key)
		}
	})

	It("returns the defaults with no file or environment", func() {
		cfg, err := config.Load(config.Options{})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg).To(Equal(config.Default()))
		Expect(cfg.ListenAddr()).To(Equal("0.0.0.0:10000"))
		Expect(cfg.Upstream.Model).To(Equal("claude-sonnet-4-20250514"))
		Expect(cfg.Upstream.MaxTokens).To(Equal(500))
		Expect(cfg.HasAPIKey()).To(BeFalse())
	})

	It("reads PORT and ANTHROPIC_API_KEY from the environment", func() {
		setenv(config.EnvPort, "8081")
		setenv(config.EnvAPIKey, "sk-env")

		cfg, err := config.Load(config.Options{})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Server.Port).To(Equal(8081))
		Expect(cfg.Upstream.APIKey).To(Equal("sk-env"))
		Expect(cfg.HasAPIKey()).To(BeTrue())
	})

	It("reads a TOML file", func() {
		path := writeFile(tmpDir, "chatrelay.toml", `
debug = true

[server]
host = "127.0.0.1"
port = 9000

[upstream]
base_url = "http://localhost:4000"
max_tokens = 256
timeout = "15s"
`)

		cfg, err := config.Load(config.Options{Path: path})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.ListenAddr()).To(Equal("127.0.0.1:9000"))
		Expect(cfg.Upstream.BaseURL).To(Equal("http://localhost:4000"))
		Expect(cfg.Upstream.MaxTokens).To(Equal(256))
		Expect(cfg.Upstream.Timeout).To(Equal(15 * time.Second))
		Expect(cfg.Upstream.Model).To(Equal("claude-sonnet-4-20250514"))
	})

	It("lets the environment override the file", func() {
		path := writeFile(tmpDir, "chatrelay.toml", "[server]\nport = 9000\n")
		setenv(config.EnvPort, "9100")

		cfg, err := config.Load(config.Options{Path: path})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9100))
	})

	It("rejects unknown keys in the file", func() {
		path := writeFile(tmpDir, "chatrelay.toml", "[server]\nprot = 9000\n")

		_, err := config.Load(config.Options{Path: path})
		Expect(err).To(MatchError(ContainSubstring("server.prot")))
	})

	It("fails on a missing config file", func() {
		_, err := config.Load(config.Options{Path: filepath.Join(tmpDir, "nope.toml")})
		Expect(err).To(HaveOccurred())
	})

	It("loads a .env file without overriding the environment", func() {
		envFile := writeFile(tmpDir, ".env", "ANTHROPIC_API_KEY=sk-dotenv\nCHATRELAY_MODEL=claude-test\n")
		setenv(config.EnvModel, "claude-from-env")

		cfg, err := config.Load(config.Options{EnvFile: envFile})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Upstream.APIKey).To(Equal("sk-dotenv"))
		Expect(cfg.Upstream.Model).To(Equal("claude-from-env"))
	})

	It("ignores a missing .env file", func() {
		_, err := config.Load(config.Options{EnvFile: filepath.Join(tmpDir, ".env")})
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("rejects malformed environment values",
		func(key, value, fragment string) {
			setenv(key, value)

			_, err := config.Load(config.Options{})
			Expect(err).To(MatchError(ContainSubstring(fragment)))
		},
		Entry("non-numeric port", config.EnvPort, "http", "invalid PORT"),
		Entry("port out of range", config.EnvPort, "70000", "out of range"),
		Entry("non-numeric max tokens", config.EnvMaxTokens, "lots", "invalid CHATRELAY_MAX_TOKENS"),
		Entry("zero max tokens", config.EnvMaxTokens, "0", "max tokens must be positive"),
		Entry("bad timeout", config.EnvUpstreamTimeout, "soon", "invalid CHATRELAY_UPSTREAM_TIMEOUT"),
		Entry("bad debug flag", config.EnvDebug, "maybe", "invalid CHATRELAY_DEBUG"),
	)
})
