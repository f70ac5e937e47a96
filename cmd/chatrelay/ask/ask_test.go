package askcmder

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/himi-ai-lab/chatrelay/pkg/anthropic"
	"github.com/himi-ai-lab/chatrelay/pkg/llm"
	"github.com/himi-ai-lab/chatrelay/relay"
)

type echoGenerator struct {
	mu   sync.Mutex
	last *llm.GenerationRequest
}

func (g *echoGenerator) Generate(_ context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	g.mu.Lock()
	g.last = req
	g.mu.Unlock()

	last := req.Messages[len(req.Messages)-1]
	return &llm.GenerationResponse{
		Content: []llm.ContentBlock{{Type: "text", Text: "echo: " + last.Content}},
	}, nil
}

func (g *echoGenerator) lastRequest() *llm.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

var _ = Describe("Ask Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		gen    *echoGenerator
		addr   string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()
		gen = &echoGenerator{}
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}

		r, err := relay.New(relay.Config{
			ListenAddr: ":0",
			Model:      anthropic.DefaultModel,
			MaxTokens:  anthropic.DefaultMaxTokens,
		}, gen, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = r.RunWithListener(listener)
		}()
		DeferCleanup(func() {
			_ = r.Shutdown(context.Background())
		})

		addr = "http://" + listener.Addr().String()
	})

	runAsk := func(args ...string) error {
		cmd := NewAskCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{"--server", addr}, args...))
		return cmd.ExecuteContext(ctx)
	}

	It("prints the relay's reply", func() {
		Expect(runAsk("料金", "を教えて")).To(Succeed())

		Expect(stdout.String()).To(Equal("echo: 料金 を教えて\n"))
	})

	It("sends history from a file", func() {
		historyPath := filepath.Join(tmpDir, "turns.json")
		Expect(os.WriteFile(historyPath, []byte(`[
			{"role": "user", "content": "こんにちは"},
			{"role": "assistant", "content": "こんにちは！ご用件をどうぞ。"}
		]`), 0o600)).To(Succeed())

		Expect(runAsk("--history", historyPath, "続けて")).To(Succeed())

		req := gen.lastRequest()
		Expect(req).NotTo(BeNil())
		Expect(req.Messages).To(Equal([]llm.Turn{
			{Role: llm.RoleUser, Content: "こんにちは"},
			{Role: llm.RoleAssistant, Content: "こんにちは！ご用件をどうぞ。"},
			{Role: llm.RoleUser, Content: "続けて"},
		}))
	})

	It("prints the conversation hash when verbose", func() {
		Expect(runAsk("-v", "hi")).To(Succeed())

		Expect(stderr.String()).To(MatchRegexp(`^conversation [0-9a-f]{64}\n$`))
	})

	It("reports relay errors", func() {
		err := runAsk("")

		Expect(err).To(MatchError(ContainSubstring("メッセージが空です")))
		Expect(stderr.String()).To(ContainSubstring("メッセージが空です"))
	})

	It("fails on an unreadable history file", func() {
		err := runAsk("--history", filepath.Join(tmpDir, "missing.json"), "hi")

		Expect(err).To(MatchError(ContainSubstring("could not read history file")))
	})
})
