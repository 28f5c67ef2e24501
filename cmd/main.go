package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sierravision/sierravision-api/internal/analysis"
	"github.com/sierravision/sierravision-api/internal/api"
	"github.com/sierravision/sierravision-api/internal/notification"
	"github.com/sierravision/sierravision-api/internal/observability"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/sierravision/sierravision-api/internal/satellite"
	"github.com/sierravision/sierravision-api/output"
)

func printBanner() {
	figure1 := figure.NewFigure("Sierra", "isometric1", true)
	figure2 := figure.NewFigure("Vision", "isometric1", true)
	bannercolor.Green(figure1.String())
	bannercolor.Green(figure2.String())
	fmt.Println()
}

type app struct {
	settings properties.Settings
	analyzer *analysis.Analyzer
	fires    *satellite.FireService
	notifier *notification.Notifier
}

func initCLI(a *app) {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3) // 3 levels up is often the panic source
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("SierraVision CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := a.notifier.SendError(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Run forest change analysis\033[0m")
		fmt.Println("\033[34m2. Download comparison imagery\033[0m")
		fmt.Println("\033[34m3. Classify vegetation density from a GeoTIFF\033[0m")
		fmt.Println("\033[34m4. Fetch active fire detections\033[0m")
		fmt.Println("\033[34m5. Start API server\033[0m")
		fmt.Println("\033[34m6. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}

		switch choice {
		case 1:
			a.runChangeAnalysis()
		case 2:
			a.downloadComparison()
		case 3:
			a.classifyDensity()
		case 4:
			a.fetchFires()
		case 5:
			server := api.NewServer(a.settings, a.analyzer, a.fires)
			fmt.Printf("\033[32mServing API on port %d\033[0m\n", a.settings.APIPort)
			if err := server.Run(); err != nil {
				fmt.Printf("\n\033[31mAPI server stopped: %s\033[0m\n", err.Error())
			}
		case 6:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func listRegions() {
	fmt.Println("\033[32m\nAvailable regions:\033[0m")
	for name := range properties.Regions {
		fmt.Printf("\033[32m- %s\033[0m\n", name)
	}
}

func (a *app) runChangeAnalysis() {
	reader := bufio.NewReader(os.Stdin)
	listRegions()

	fmt.Print("\033[34mEnter the region name: \033[0m")
	region, _ := reader.ReadString('\n')
	region = strings.TrimSpace(region)

	fmt.Print("\033[34mEnter the before date (YYYY-MM-DD): \033[0m")
	beforeInput, _ := reader.ReadString('\n')
	beforeDate, err := time.Parse("2006-01-02", strings.TrimSpace(beforeInput))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return
	}

	fmt.Print("\033[34mEnter the after date (YYYY-MM-DD): \033[0m")
	afterInput, _ := reader.ReadString('\n')
	afterDate, err := time.Parse("2006-01-02", strings.TrimSpace(afterInput))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return
	}

	fmt.Print("\033[34mEnter the detection mode (mask-subtraction or index-difference): \033[0m")
	modeInput, _ := reader.ReadString('\n')
	mode, err := raster.ParseChangeMode(strings.TrimSpace(modeInput))
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	result, err := a.analyzer.AnalyzeChange(context.Background(), analysis.Request{
		Region:     region,
		BeforeDate: beforeDate,
		AfterDate:  afterDate,
		Mode:       mode,
	})
	if err != nil {
		fmt.Printf("\n\033[31mError running analysis: %s\033[0m\n", err.Error())
		a.notifier.SendError(fmt.Sprintf("SierraVision CLI\n\nError running analysis: %s", err.Error()))
		return
	}

	prefix := filepath.Join(a.settings.DataDir, region)
	if err := output.CreateChangeMapImage(result.ChangeMap, prefix+"_change_map.png"); err != nil {
		fmt.Printf("\n\033[31mError rendering change map: %s\033[0m\n", err.Error())
		return
	}
	if result.LossMask != nil {
		if err := output.CreateLossOverlay(result.After.Raster, result.LossMask, prefix+"_loss_overlay.png"); err != nil {
			fmt.Printf("\n\033[31mError rendering loss overlay: %s\033[0m\n", err.Error())
			return
		}
	}

	if len(result.Report.Regional) > 0 {
		if err := output.WriteRegionalCSV(result.Report.Regional, prefix+"_regional.csv"); err != nil {
			fmt.Printf("\n\033[31mError writing regional CSV: %s\033[0m\n", err.Error())
			return
		}
	}

	reportPath, err := analysis.WriteReport(a.settings.DataDir, result.Report)
	if err != nil {
		fmt.Printf("\n\033[31mError writing report: %s\033[0m\n", err.Error())
		return
	}

	stats := result.Report.Statistics
	fmt.Printf("\n\033[32mSuccessful analysis!\n Loss: %.2f%%  Gain: %.2f%%  Net: %.2f%%\n Report located at: %s\033[0m\n",
		stats.LossPercent, stats.GainPercent, stats.NetChangePercent, reportPath)
	a.notifier.SendSuccess(fmt.Sprintf("SierraVision CLI\n\nSuccessful analysis of %s!\nNet change: %.2f%%\nReport: %s", region, stats.NetChangePercent, reportPath))
}

func (a *app) downloadComparison() {
	reader := bufio.NewReader(os.Stdin)
	listRegions()

	fmt.Print("\033[34mEnter the region name: \033[0m")
	region, _ := reader.ReadString('\n')
	region = strings.TrimSpace(region)
	bbox, ok := properties.Regions[region]
	if !ok {
		fmt.Printf("\n\033[31mUnknown region: %s\033[0m\n", region)
		return
	}

	fmt.Print("\033[34mEnter the before date (YYYY-MM-DD): \033[0m")
	beforeInput, _ := reader.ReadString('\n')
	beforeDate, err := time.Parse("2006-01-02", strings.TrimSpace(beforeInput))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return
	}

	fmt.Print("\033[34mEnter the after date (YYYY-MM-DD): \033[0m")
	afterInput, _ := reader.ReadString('\n')
	afterDate, err := time.Parse("2006-01-02", strings.TrimSpace(afterInput))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return
	}

	before, after, err := a.analyzer.Fetcher().FetchComparison(context.Background(), beforeDate, afterDate, bbox, 1024, 1024)
	if err != nil {
		fmt.Printf("\n\033[31mError fetching imagery: %s\033[0m\n", err.Error())
		return
	}

	outputPath := filepath.Join(a.settings.DataDir, region+"_comparison.png")
	err = output.CreateComparisonImage(
		satellite.Grayscale(before.Raster), satellite.Grayscale(after.Raster),
		before.Date.Format("2006-01-02"), after.Date.Format("2006-01-02"), outputPath)
	if err != nil {
		fmt.Printf("\n\033[31mError rendering comparison: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\n\033[32mComparison image located at: %s\033[0m\n", outputPath)
	fmt.Printf("\033[32mSources: %s / %s\033[0m\n", before.Source, after.Source)
}

func (a *app) classifyDensity() {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33mThe GeoTIFF must carry red and near-infrared bands.\033[0m")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\033[34mEnter the GeoTIFF path: \033[0m")
	tiffPath, _ := reader.ReadString('\n')
	tiffPath = strings.TrimSpace(tiffPath)

	_, classes, summary, err := a.analyzer.AnalyzeDensity(tiffPath)
	if err != nil {
		fmt.Printf("\n\033[31mError classifying density: %s\033[0m\n", err.Error())
		return
	}

	base := strings.TrimSuffix(filepath.Base(tiffPath), filepath.Ext(tiffPath))
	outputPath := filepath.Join(a.settings.DataDir, base+"_density_map.png")
	if err := output.CreateDensityMapImage(classes, outputPath); err != nil {
		fmt.Printf("\n\033[31mError rendering density map: %s\033[0m\n", err.Error())
		return
	}

	fmt.Println("\033[32m\nDensity distribution:\033[0m")
	for class, label := range raster.DensityLabels {
		fmt.Printf("\033[32m- %s: %.2f%%\033[0m\n", label, summary.Percentages[class])
	}
	fmt.Printf("\n\033[32mDensity map located at: %s\033[0m\n", outputPath)
}

func (a *app) fetchFires() {
	reader := bufio.NewReader(os.Stdin)
	listRegions()

	fmt.Print("\033[34mEnter the region name: \033[0m")
	region, _ := reader.ReadString('\n')
	region = strings.TrimSpace(region)
	bbox, ok := properties.Regions[region]
	if !ok {
		fmt.Printf("\n\033[31mUnknown region: %s\033[0m\n", region)
		return
	}

	fmt.Print("\033[34mEnter the date (YYYY-MM-DD, blank for yesterday): \033[0m")
	dateInput, _ := reader.ReadString('\n')
	dateInput = strings.TrimSpace(dateInput)
	date := time.Now().AddDate(0, 0, -1)
	if dateInput != "" {
		parsed, err := time.Parse("2006-01-02", dateInput)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
			return
		}
		date = parsed
	}

	fires, err := a.fires.FetchFires(context.Background(), date, bbox)
	if err != nil {
		fmt.Printf("\n\033[31mError fetching fire data: %s\033[0m\n", err.Error())
		return
	}

	outputPath := filepath.Join(a.settings.DataDir, region+"_fires.csv")
	if err := output.WriteFiresCSV(fires, outputPath); err != nil {
		fmt.Printf("\n\033[31mError writing fire CSV: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\n\033[32m%d fire detections on %s\n CSV located at: %s\033[0m\n", len(fires), date.Format("2006-01-02"), outputPath)
}

func main() {
	var port int
	for i, arg := range os.Args {
		if strings.HasPrefix(arg, "--port=") {
			portArg := strings.TrimPrefix(arg, "--port=")
			var err error
			port, err = strconv.Atoi(portArg)
			if err != nil {
				fmt.Printf("\033[31mInvalid port value: %s\033[0m\n", portArg)
				os.Exit(1)
			}
			break
		} else if arg == "--port" && i+1 < len(os.Args) {
			var err error
			port, err = strconv.Atoi(os.Args[i+1])
			if err != nil {
				fmt.Printf("\033[31mInvalid port value: %s\033[0m\n", os.Args[i+1])
				os.Exit(1)
			}
			break
		}
	}

	if err := godotenv.Load(); err != nil {
		fmt.Println("\033[33mNo .env file found, using environment as is\033[0m")
	}

	settings := properties.FromEnv()
	if port != 0 {
		settings.APIPort = port
	}
	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		fmt.Printf("\033[31mFailed to create data directory: %s\033[0m\n", err.Error())
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	fetcher := satellite.NewFetcher(settings, satellite.DefaultProviders(settings), metrics)
	analyzer := analysis.NewAnalyzer(settings, fetcher, metrics)
	fires := satellite.NewFireService(settings)
	notifier := notification.NewNotifier(settings.DiscordErrorWebhook, settings.DiscordSuccessWebhook)

	initCLI(&app{
		settings: settings,
		analyzer: analyzer,
		fires:    fires,
		notifier: notifier,
	})
}
