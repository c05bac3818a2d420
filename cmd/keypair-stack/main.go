package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/cfkeypair/pkg/provisioning"
	"github.com/theory-cloud/cfkeypair/pkg/provisioning/cdk"
)

func main() {
	code := run(os.Args[1:])
	jsii.Close()
	os.Exit(code)
}

func run(args []string) int {
	fs := flag.NewFlagSet("keypair-stack", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CFKEYPAIR_CONFIG"), "path to a YAML provisioning config")
	stage := fs.String("stage", "", "override the configured stage")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath, *stage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keypair-stack: FAIL: %v\n", err)
		return 2
	}

	app := awscdk.NewApp(nil)
	adapter := cdk.NewAdapter(app, cdk.WithStackProps(&awscdk.StackProps{Env: stackEnv()}))
	plan := provisioning.NewPlan(cfg, time.Now())
	if _, err := adapter.Provision(plan); err != nil {
		fmt.Fprintf(os.Stderr, "keypair-stack: FAIL: %v\n", err)
		return 1
	}

	app.Synth(nil)
	fmt.Fprintf(os.Stderr, "keypair-stack: synthesized %s, private key readable during %s\n", cfg.StackName(), plan.Window)
	return 0
}

func loadConfig(path, stage string) (provisioning.Config, error) {
	cfg, err := provisioning.LoadConfig(path)
	if err != nil {
		return provisioning.Config{}, err
	}
	if strings.TrimSpace(stage) != "" {
		cfg = cfg.WithStage(stage)
	}
	return cfg, nil
}

// stackEnv pins the stack to the CLI's account and region when the CDK toolkit provides them.
func stackEnv() *awscdk.Environment {
	account := strings.TrimSpace(os.Getenv("CDK_DEFAULT_ACCOUNT"))
	region := strings.TrimSpace(os.Getenv("CDK_DEFAULT_REGION"))
	if account == "" && region == "" {
		return nil
	}
	env := &awscdk.Environment{}
	if account != "" {
		env.Account = jsii.String(account)
	}
	if region != "" {
		env.Region = jsii.String(region)
	}
	return env
}
