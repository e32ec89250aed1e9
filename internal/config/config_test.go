package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/temoc-project/temoc/internal/config"
)

const minimalYAML = `
execute_server_command: "python fixture_server.py %p"
`

const fullYAML = `
execute_server_command: "python fixture_server.py %p"
port: 9000
pool_size: 4
test_dir: acceptance
extension: MD
recursive: false
show_snoozed: false
pipe_output: true
deadline: 30s
`

func writeTemp(t GinkgoTInterface, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	return path
}

var _ = Describe("Config", func() {
	Describe("Load", func() {
		It("fills unset keys from DefaultConfig", func() {
			path := writeTemp(GinkgoT(), "minimal.yaml", minimalYAML)
			cfg, err := config.Load(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.ExecuteServerCommand).To(Equal("python fixture_server.py %p"))
			Expect(cfg.Port).To(Equal(8085))
			Expect(cfg.PoolSize).To(Equal(1))
			Expect(cfg.TestDir).To(Equal("tests"))
			Expect(cfg.Extension).To(Equal("md"))
			Expect(cfg.IsRecursive()).To(BeTrue())
			Expect(cfg.IsShowSnoozed()).To(BeTrue())
		})

		It("overrides every default when the file sets it", func() {
			path := writeTemp(GinkgoT(), "full.yaml", fullYAML)
			cfg, err := config.Load(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Port).To(Equal(9000))
			Expect(cfg.PoolSize).To(Equal(4))
			Expect(cfg.TestDir).To(Equal("acceptance"))
			Expect(cfg.Extension).To(Equal("MD"))
			Expect(cfg.IsRecursive()).To(BeFalse())
			Expect(cfg.IsShowSnoozed()).To(BeFalse())
			Expect(cfg.PipeOutput).To(BeTrue())
			Expect(cfg.Deadline.Seconds()).To(Equal(30.0))
		})

		It("returns an error for a nonexistent file", func() {
			_, err := config.Load("nonexistent.yaml")
			Expect(err).To(HaveOccurred())
		})

		It("returns an error for invalid YAML", func() {
			path := writeTemp(GinkgoT(), "invalid.yaml", "{{invalid yaml}}")
			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DefaultConfig", func() {
		It("returns a config with sensible defaults", func() {
			cfg := config.DefaultConfig()
			Expect(cfg.Port).To(Equal(8085))
			Expect(cfg.PoolSize).To(Equal(1))
			Expect(cfg.TestDir).To(Equal("tests"))
			Expect(cfg.Extension).To(Equal("md"))
			Expect(cfg.IsRecursive()).To(BeTrue())
			Expect(cfg.IsShowSnoozed()).To(BeTrue())
			Expect(cfg.UsesStdio()).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		It("passes for a valid config", func() {
			cfg := config.DefaultConfig()
			cfg.ExecuteServerCommand = "python fixture_server.py %p"
			Expect(config.Validate(cfg)).To(Succeed())
		})

		It("fails if execute_server_command is empty", func() {
			cfg := config.DefaultConfig()
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("execute_server_command"))
		})

		It("fails if pool_size is less than 1", func() {
			cfg := config.DefaultConfig()
			cfg.ExecuteServerCommand = "x"
			cfg.PoolSize = 0
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("pool_size"))
		})

		It("fails if test_dir is empty", func() {
			cfg := config.DefaultConfig()
			cfg.ExecuteServerCommand = "x"
			cfg.TestDir = ""
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("test_dir"))
		})

		It("fails if pool_size > 1 with stdio transport", func() {
			cfg := config.DefaultConfig()
			cfg.ExecuteServerCommand = "x"
			cfg.Port = 0
			cfg.PoolSize = 2
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("stdio"))
		})
	})
})
