package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ricover/ricover/pkg/utils"
	"github.com/spf13/viper"
)

// Supported resource families and their descriptions for help output.
var FamilyDescriptions = map[string]string{
	"ec2": "Reserved instance coverage for EC2 instances",
	"rds": "Reserved instance coverage for RDS database instances",
}

// Settings holds everything a scan needs. It is resolved once in the command
// layer and passed down explicitly; nothing below this layer reads flags,
// environment variables, or config files.
type Settings struct {
	Regions  []string
	Families []string
	Profile  string
	NoColor  bool
}

// Resolve fills unset fields from the environment and the optional config
// file (~/.config/ricover/config.yaml), then falls back to defaults.
// Precedence: flag value > RICOVER_* env > config file > default.
func Resolve(s Settings) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("RICOVER")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.config/ricover")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if len(s.Regions) == 0 {
		s.Regions = splitList(v.GetString("regions"))
	}
	if len(s.Regions) == 0 {
		if r := os.Getenv("AWS_REGION"); r != "" {
			s.Regions = []string{r}
		} else {
			s.Regions = []string{utils.GetDefaultRegion()}
		}
	}

	if len(s.Families) == 0 {
		s.Families = splitList(v.GetString("families"))
	}
	if len(s.Families) == 0 {
		s.Families = []string{"ec2", "rds"}
	}

	if s.Profile == "" {
		s.Profile = v.GetString("profile")
	}
	if s.Profile == "" {
		s.Profile = os.Getenv("AWS_PROFILE")
	}

	if !s.NoColor {
		s.NoColor = v.GetBool("no_color")
	}

	return s, s.validate()
}

func (s Settings) validate() error {
	for _, region := range s.Regions {
		if !utils.IsValidRegion(region) {
			return fmt.Errorf("invalid region %q", region)
		}
	}
	for _, family := range s.Families {
		if _, ok := FamilyDescriptions[family]; !ok {
			return fmt.Errorf("unknown family %q (supported: %s)",
				family, strings.Join(supportedFamilies(), ", "))
		}
	}
	return nil
}

func supportedFamilies() []string {
	families := make([]string, 0, len(FamilyDescriptions))
	for family := range FamilyDescriptions {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
