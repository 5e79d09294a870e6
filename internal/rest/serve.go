// Copyright (C) 2021 Magnus Karlsen
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/flatfield/internal/ops"
	"github.com/mkarlsen/flatfield/internal/ops/flat"
)


// Start the correction web service, optionally sandboxed into a chroot
// environment with dropped privileges
func Serve(chroot string, setuid int) {
	MakeSandbox(chroot, setuid)
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",    getPing)
			v1.POST("/stats",   postStats)
			v1.POST("/correct", postCorrect)
		}
	}
	r.Run() // listen and serve on 0.0.0.0:8080
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Remotely supplied paths must stay below the working directory: relative
// only, no parent traversal
func isPathAllowed(path string) bool {
	if path=="" { return true }
	if filepath.IsAbs(path) { return false }
	for _,part:=range strings.Split(filepath.ToSlash(path), "/") {
		if part==".." { return false }
	}
	return true
}

func checkPathsAllowed(paths ...string) error {
	for _,path:=range paths {
		if !isPathAllowed(path) {
			return fmt.Errorf("%s: path not allowed, must be relative without '..'", path)
		}
	}
	return nil
}

type postStatsArgs struct {
	FilePatterns []string  `json:"filePatterns"`
}

// Report basic per-channel statistics of the input files as a plain text stream
func postStats(c *gin.Context)  {
	logWriter := c.Writer
	var args postStatsArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	if err:=checkPathsAllowed(args.FilePatterns...); err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		return
	}
	fileNames, err:=flat.GlobPatterns(args.FilePatterns)
	if err!=nil {
		fmt.Fprintf(logWriter, "Error globbing filenames: %s\n", err.Error())
		return
	}

	f, err:=flat.LoadImageFromFiles(fileNames, logWriter)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		logWriter.(http.Flusher).Flush()
		return
	}
	for i,ch:=range f.Split() {
		fmt.Fprintf(logWriter, "%d: %s\n", i+1, ch.Stats().String())
	}
	logWriter.(http.Flusher).Flush()

	return
}


type postCorrectArgs struct {
	FilePatterns []string        `json:"filePatterns"`
	Correct       flat.RawConfig `json:"correct"`
	Out           string         `json:"out"`  // channel TIFF output pattern, blank to skip
	Jpg           string         `json:"jpg"`  // preview JPG output, blank to skip
}

// Run the full illumination correction pipeline on the input files, streaming
// the processing log as plain text
func postCorrect(c *gin.Context) {
	logWriter := c.Writer
	args:=postCorrectArgs{Correct: flat.NewRawConfigDefault()}
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	if err:=checkPathsAllowed(append([]string{args.Out, args.Jpg}, args.FilePatterns...)...); err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		return
	}
	fileNames, err:=flat.GlobPatterns(args.FilePatterns)
	if err!=nil {
		fmt.Fprintf(logWriter, "Error globbing filenames: %s\n", err.Error())
		return
	}

	f, err:=flat.LoadImageFromFiles(fileNames, logWriter)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		logWriter.(http.Flusher).Flush()
		return
	}

	opsCtx:=ops.NewContext(logWriter, args.Correct.KeepIntermediates)
	res, _, err:=flat.Correct(opsCtx, f, args.Correct)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		logWriter.(http.Flusher).Flush()
		return
	}

	if args.Out!="" {
		if err:=flat.SaveChannelsToFiles(res, args.Out, logWriter); err!=nil {
			fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		}
	}
	if args.Jpg!="" {
		fmt.Fprintf(logWriter, "Writing preview JPG to %s\n", args.Jpg)
		if err:=res.WritePreviewJPGToFile(args.Jpg, 95); err!=nil {
			fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		}
	}
	logWriter.(http.Flusher).Flush()

	return
}
