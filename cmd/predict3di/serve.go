package main

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the encoder over HTTP",
	Long: `Serve the encoder over HTTP

Routes:

  POST /api/encode               encode an uploaded structure file
  GET  /api/entry/{id}           download a PDB entry and encode it
  GET  /api/entry/{id}/{chain}   one chain as chain_<chain>_3di.txt
  GET  /healthz                  liveness

Uploads larger than "server.max-upload" bytes are rejected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.New(encoder(), conf.Fetcher(), server.Options{
			MaxUpload: conf.Server.MaxUpload,
		})
		log.Printf("listening on %s", conf.Server.Addr)
		return http.ListenAndServe(conf.Server.Addr, srv)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "The address to listen on.")
	serveCmd.Flags().Int64("max-upload", 0,
		"The largest structure file accepted, in bytes.")
	bindFlag(serveCmd, "server.addr", "addr")
	bindFlag(serveCmd, "server.max-upload", "max-upload")
}
